package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_US = 50 // ADC read interval in microseconds (20 kHz)

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Photosensor pins
	PIN_SENSOR_ADC  = machine.A1 // reflective photosensor, higher is darker
	PIN_SENSOR_DARK = machine.D7 // comparator output, high on dark
	PIN_LED         = machine.LED

	// Output goes to the USB CDC console, not a hardware UART.
	// Format "unix_micros,value,digital\n"
	// Example: "1234567890123456,4095,1\n" = ~24 bytes max per line
	// 20000 lines/sec * 24 bytes/line = 480,000 bytes/sec
	// CDC runs at USB full speed; the host's 921600 baud setting is nominal.
)
