//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcSensor machine.ADC
	console   = machine.Serial // USB CDC on the XIAO

	// Timing
	lastSample time.Time
	interval   = time.Duration(SAMPLE_INTERVAL_US) * time.Microsecond

	// Line buffer, reused for every sample
	line [32]byte
)

func main() {
	PIN_SENSOR_DARK.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	PIN_SENSOR_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	adcSensor = machine.ADC{Pin: PIN_SENSOR_ADC}
	adcSensor.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	lastSample = time.Now()

	for {
		now := time.Now()
		if now.Sub(lastSample) < interval {
			continue
		}
		lastSample = lastSample.Add(interval)
		// Skip missed slots instead of bursting to catch up
		if now.Sub(lastSample) > interval {
			lastSample = now
		}

		// 16-bit ADC value scaled down to the configured resolution
		value := adcSensor.Get() >> (16 - ADC_RESOLUTION)
		dark := PIN_SENSOR_DARK.Get()
		PIN_LED.Set(dark)

		writeSample(now.UnixNano()/1000, value, dark)
	}
}

// writeSample writes "unix_micros,value,digital\n" to the console.
func writeSample(micros int64, value uint16, dark bool) {
	n := len(line)
	n--
	line[n] = '\n'
	n--
	if dark {
		line[n] = '1'
	} else {
		line[n] = '0'
	}
	n--
	line[n] = ','
	n = putUint(n, uint64(value))
	n--
	line[n] = ','
	n = putUint(n, uint64(micros))

	_, _ = console.Write(line[n:])
}

// putUint writes v right-aligned ending before index end and returns the
// index of its first digit.
func putUint(end int, v uint64) int {
	if v == 0 {
		end--
		line[end] = '0'
		return end
	}
	for v > 0 {
		end--
		line[end] = byte('0' + v%10)
		v /= 10
	}
	return end
}
