package proxysim

// DefaultPeripheralAddress is the address of the built-in demo peripheral.
const DefaultPeripheralAddress = "AA:BB:CC:DD:EE:FF"

// DefaultPeripheral returns the built-in demo peripheral: device information,
// a notifiable battery level, and a writable control point.
func DefaultPeripheral() *Peripheral {
	p := &Peripheral{
		Name:    "sim-peripheral",
		Address: DefaultPeripheralAddress,
		Services: []ServiceLayout{
			{
				UUID: "180a",
				Characteristics: []CharacteristicLayout{
					{
						UUID:       "2a29",
						Properties: []string{"read"},
						Value:      "53696d436f7270", // "SimCorp"
					},
					{
						UUID:       "2a24",
						Properties: []string{"read"},
						Value:      "53502d31", // "SP-1"
					},
				},
			},
			{
				UUID: "180f",
				Characteristics: []CharacteristicLayout{
					{
						UUID:       "2a19",
						Properties: []string{"read", "notify"},
						Value:      "64", // 100%
						Descriptors: []DescriptorLayout{
							{UUID: "2902", Value: "0000"},
						},
					},
				},
			},
			{
				UUID: "6e400001-b5a3-f393-e0a9-e50e24dcca9e",
				Characteristics: []CharacteristicLayout{
					{
						UUID:       "6e400002-b5a3-f393-e0a9-e50e24dcca9e",
						Properties: []string{"write", "write-without-response"},
					},
					{
						UUID:       "6e400003-b5a3-f393-e0a9-e50e24dcca9e",
						Properties: []string{"notify"},
						Descriptors: []DescriptorLayout{
							{UUID: "2902", Value: "0000"},
						},
					},
				},
			},
		},
	}
	p.assignHandles()
	return p
}
