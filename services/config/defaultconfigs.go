package config

// -----------------------------------------------------------------------------
// Embedded compositions
//
// Key: device id (settings "device", or the firmware's build-time id)
// Val: composition document
// -----------------------------------------------------------------------------

const cfgPico = `{
  "hw": {
    "name": "pico",
    "$sensors": [
      {"aht20": {"name": "air", "bus": "i2c0"}}
    ],
    "$groups": [
      {"group": {"name": "enclosure", "$sensors": [
        {"shtc3": {"name": "board", "bus": "i2c0"}}
      ]}}
    ],
    "$comms": [
      {"log": {"name": "console", "rate": 0.2, "burst": 4}}
    ]
  }
}`

const cfgHostDemo = `{
  "hw": {
    "name": "host-demo",
    "$sensors": [
      {"aht20": {"name": "air", "bus": "i2c0"}},
      {"static": {"name": "battery", "quantity": "Voltage", "unit": "V", "value": 12.6, "precision": 2}}
    ],
    "$groups": [
      {"group": {"name": "enclosure", "$sensors": [
        {"shtc3": {"name": "board", "bus": "i2c0"}}
      ]}}
    ],
    "$comms": [
      {"log": {"name": "console", "rate": 1, "burst": 5}},
      {"prometheus": {"name": "metrics"}},
      {"websocket": {"name": "live", "path": "/ws"}}
    ]
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico":      []byte(cfgPico),
	"host-demo": []byte(cfgHostDemo),
}
