package daemon

import (
	"encoding/binary"
	"fmt"
)

// Every message carries its msg_id as the first 8 bytes of the payload
// (after the tag byte ReadFrame already split off), per spec.md §4.H's
// "each message carries a monotonically increasing msg_id" rule.

func putMsgID(id uint64, rest []byte) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return append(buf[:], rest...)
}

func takeMsgID(payload []byte) (id uint64, rest []byte, err error) {
	if len(payload) < 8 {
		return 0, nil, fmt.Errorf("daemon: payload too short for msg_id")
	}
	return binary.BigEndian.Uint64(payload[:8]), payload[8:], nil
}

// EncodeSessionInit serializes a SessionInit into a frame payload.
func EncodeSessionInit(s SessionInit) []byte {
	envFields := make([][]byte, 0, len(s.Env)*2)
	for k, v := range s.Env {
		envFields = append(envFields, []byte(k), []byte(v))
	}
	argFields := make([][]byte, len(s.Args))
	for i, a := range s.Args {
		argFields[i] = []byte(a)
	}

	var lens [3]byte
	lens[0] = byte(s.StdinMode)
	binary.BigEndian.PutUint16(lens[1:3], uint16(len(s.Env)))

	body := encodeKV(append([][]byte{
		[]byte(s.WorkingDir),
		lens[:],
		encodeKV(append(envFields, argFields...)...),
		uint32Bytes(uint32(len(s.Args))),
	})...)
	return putMsgID(s.MsgID, body)
}

func uint32Bytes(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

// DecodeSessionInit parses a SessionInit frame payload.
func DecodeSessionInit(payload []byte) (SessionInit, error) {
	id, rest, err := takeMsgID(payload)
	if err != nil {
		return SessionInit{}, err
	}
	fields, err := decodeKV(rest, 4)
	if err != nil {
		return SessionInit{}, err
	}
	wd := string(fields[0])
	if len(fields[1]) < 3 {
		return SessionInit{}, fmt.Errorf("daemon: malformed session init flags")
	}
	mode := StdinMode(fields[1][0])
	envCount := int(binary.BigEndian.Uint16(fields[1][1:3]))
	argCount := int(binary.BigEndian.Uint32(fields[3]))

	kv, err := decodeKV(fields[2], envCount*2+argCount)
	if err != nil {
		return SessionInit{}, err
	}
	env := make(map[string]string, envCount)
	for i := 0; i < envCount; i++ {
		env[string(kv[2*i])] = string(kv[2*i+1])
	}
	args := make([]string, argCount)
	for i := 0; i < argCount; i++ {
		args[i] = string(kv[envCount*2+i])
	}

	return SessionInit{
		MsgID:      id,
		WorkingDir: wd,
		Env:        env,
		Args:       args,
		StdinMode:  mode,
	}, nil
}

// EncodeData serializes a data chunk (Stdin/Stdout/Stderr) payload.
func EncodeData(msgID uint64, data []byte) []byte {
	return putMsgID(msgID, data)
}

// DecodeData parses a data chunk payload.
func DecodeData(payload []byte) (msgID uint64, data []byte, err error) {
	return takeMsgID(payload)
}

// EncodeExecutionResult serializes an ExecutionResult payload.
func EncodeExecutionResult(msgID uint64, exitCode int) []byte {
	return putMsgID(msgID, uint32Bytes(uint32(int32(exitCode))))
}

// DecodeExecutionResult parses an ExecutionResult payload.
func DecodeExecutionResult(payload []byte) (ExecutionResult, error) {
	id, rest, err := takeMsgID(payload)
	if err != nil {
		return ExecutionResult{}, err
	}
	if len(rest) < 4 {
		return ExecutionResult{}, fmt.Errorf("daemon: malformed execution result")
	}
	code := int32(binary.BigEndian.Uint32(rest[:4]))
	return ExecutionResult{MsgID: id, ExitCode: int(code)}, nil
}
