package spjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	val, err := parseMessage([]byte(`{"P":"/dev/ttyUSB0","D":"ok\r\n"}`))
	require.NoError(t, err)
	assert.Equal(t, &DataFrame{Port: "/dev/ttyUSB0", Data: "ok\r\n"}, val)

	val, err = parseMessage([]byte(`{"SerialPorts":[{"Name":"/dev/ttyUSB0","IsOpen":true,"Baud":9600}]}`))
	require.NoError(t, err)
	assert.Equal(t, &SerialPortList{SerialPorts: []SerialPort{{Name: "/dev/ttyUSB0", IsOpen: true, Baud: 9600}}}, val)

	val, err = parseMessage([]byte(`{"Cmd":"Complete","Type":["Buf"],"D":["PU;"],"Id":"cmd_1"}`))
	require.NoError(t, err)
	assert.Equal(t, "Complete", val.(*CmdStatus).Cmd)

	val, err = parseMessage([]byte(`{"Error":"port not open"}`))
	require.NoError(t, err)
	assert.Equal(t, &ErrorMessage{Error: "port not open"}, val)

	_, err = parseMessage([]byte(`{"Hostname":"bridge"}`))
	assert.Error(t, err)
}
