// internal/telemetry/registers.go
package telemetry

// Holding register map shared by the poller and the simulator.
// Offsets are the protocol and MUST NOT be configurable.

// ---- REGISTER OFFSETS ----

// RegDeviceID holds the numeric device identity.
const RegDeviceID = 0

// RegStatusBits holds the device status bitfield.
const RegStatusBits = 1

// RegPowerW holds active power in watts, unscaled.
const RegPowerW = 2

// RegVoltageX10 holds voltage in tenths of a volt.
const RegVoltageX10 = 3

// RegCurrentX100 holds current in hundredths of an ampere.
const RegCurrentX100 = 4

// RegTempX10 holds temperature in tenths of a degree Celsius.
const RegTempX10 = 5

// RegSocX10 holds state of charge in tenths of a percent.
const RegSocX10 = 6

// RegSetpointW holds the power setpoint in watts. Writable on the
// simulator; the poller does not publish it.
const RegSetpointW = 7

// Offsets 8 and 9 are reserved and read as zero.

// ---- BLOCK GEOMETRY ----

// BlockLength is the number of registers in one published block
// (offsets 0–9, reserved tail included).
const BlockLength = 10

// ---- STATUS BITS ----

// StatusRunning is set while the device process model is running.
const StatusRunning uint16 = 1 << 0
