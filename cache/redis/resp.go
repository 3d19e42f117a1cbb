package redis

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func encodeCommand(parts ...string) []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "*%d\r\n", len(parts))
	for _, part := range parts {
		fmt.Fprintf(buf, "$%d\r\n%s\r\n", len(part), part)
	}
	return buf.Bytes()
}

// decodeRESP reads one reply. Simple strings come back as string, integers
// as int64, bulk strings as []byte, nil bulk/array replies as untyped nil,
// and server errors as Go errors.
func decodeRESP(r *bufio.Reader) (any, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	line = strings.TrimSuffix(line, "\r\n")
	switch prefix {
	case '+':
		return line, nil
	case '-':
		return nil, errors.New(line)
	case ':':
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case '$':
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, err
		}
		if n == -1 {
			return nil, nil
		}
		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		if err := consumeCRLF(r); err != nil {
			return nil, err
		}
		return data, nil
	case '*':
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, err
		}
		if n == -1 {
			return nil, nil
		}
		arr := make([]any, n)
		for i := 0; i < int(n); i++ {
			val, err := decodeRESP(r)
			if err != nil {
				return nil, err
			}
			arr[i] = val
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("redis: unsupported RESP prefix %q", prefix)
	}
}

func expectOK(reader *bufio.Reader) error {
	resp, err := decodeRESP(reader)
	if err != nil {
		return err
	}
	if msg, ok := resp.(string); ok && strings.EqualFold(msg, "OK") {
		return nil
	}
	return fmt.Errorf("redis: expected OK, got %v", resp)
}

func consumeCRLF(r *bufio.Reader) error {
	b1, err := r.ReadByte()
	if err != nil {
		return err
	}
	b2, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b1 != '\r' || b2 != '\n' {
		return errors.New("redis: malformed RESP terminator")
	}
	return nil
}
