package pi

// A headerPin is one position of the 40-pin header. gpio is the BCM line number, or -1 for
// power and ground.
type headerPin struct {
	name string
	gpio int
	// hwPWM marks the lines the SoC can drive from a PWM channel.
	hwPWM bool
	// reserved lines are wired to the HAT ID EEPROM and must be left alone.
	reserved bool
}

// header lists the pins of the 40-pin header in physical order, so pin N of the header is
// header[N-1]. It is the same on every model since the B+.
var header = []headerPin{
	{name: "3V3", gpio: -1},
	{name: "5V", gpio: -1},
	{name: "GPIO2", gpio: 2},
	{name: "5V", gpio: -1},
	{name: "GPIO3", gpio: 3},
	{name: "GND", gpio: -1},
	{name: "GPIO4", gpio: 4},
	{name: "GPIO14", gpio: 14},
	{name: "GND", gpio: -1},
	{name: "GPIO15", gpio: 15},
	{name: "GPIO17", gpio: 17},
	{name: "GPIO18", gpio: 18, hwPWM: true},
	{name: "GPIO27", gpio: 27},
	{name: "GND", gpio: -1},
	{name: "GPIO22", gpio: 22},
	{name: "GPIO23", gpio: 23},
	{name: "3V3", gpio: -1},
	{name: "GPIO24", gpio: 24},
	{name: "GPIO10", gpio: 10},
	{name: "GND", gpio: -1},
	{name: "GPIO9", gpio: 9},
	{name: "GPIO25", gpio: 25},
	{name: "GPIO11", gpio: 11},
	{name: "GPIO8", gpio: 8},
	{name: "GND", gpio: -1},
	{name: "GPIO7", gpio: 7},
	{name: "ID_SD", gpio: 0, reserved: true},
	{name: "ID_SC", gpio: 1, reserved: true},
	{name: "GPIO5", gpio: 5},
	{name: "GND", gpio: -1},
	{name: "GPIO6", gpio: 6},
	{name: "GPIO12", gpio: 12, hwPWM: true},
	{name: "GPIO13", gpio: 13, hwPWM: true},
	{name: "GND", gpio: -1},
	{name: "GPIO19", gpio: 19, hwPWM: true},
	{name: "GPIO16", gpio: 16},
	{name: "GPIO26", gpio: 26},
	{name: "GPIO20", gpio: 20},
	{name: "GND", gpio: -1},
	{name: "GPIO21", gpio: 21},
}
