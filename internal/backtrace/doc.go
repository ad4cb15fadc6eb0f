// Package backtrace turns an ESP32 panic backtrace into source locations.
//
// A backtrace as printed by the ESP-IDF panic handler looks like:
//
//	Backtrace: 0x400d1234:0x3ffb1f00 0x400d5678:0x3ffb1ec0 |<-CORRUPTED
//
// Each frame is a PC:SP pair. ParseAddresses keeps the program counters,
// in order, and Resolver hands them to an addr2line-compatible tool
// together with the firmware ELF image:
//
//	addr2line -e .pio/build/nodemcu-32s2/firmware.elf 0x400d1234 0x400d5678
//
// The tool's output is streamed line by line as it is produced. On
// Windows hosts the tool can be run through a wrapper such as wsl.
package backtrace
