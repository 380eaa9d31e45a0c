package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"radiocode/internal/shared"
)

var fordSerialPattern = regexp.MustCompile(`^[MV][0-9]{6}$`)

// fordVOffset is where the V-series region starts in the lookup table.
const fordVOffset = 2_000_000

// fordDecoder reads 16-bit little-endian codes from a flat table file.
type fordDecoder struct {
	table string
	req   shared.DecodeRequest
}

func newFordFactory(table string) Factory {
	return func(req shared.DecodeRequest) (Decoder, error) {
		if _, err := os.Stat(table); err != nil {
			return nil, &Error{Kind: ErrResourceUnavailable, Msg: "Ford radio code table unavailable", Err: err}
		}
		return &fordDecoder{table: table, req: req}, nil
	}
}

func (d *fordDecoder) Decode() (*shared.DecodeResponse, error) {
	if d.req.SerialNumber == "" {
		return nil, newError(ErrMissingField, "Ford requires a serial_number")
	}
	code, err := d.Compute()
	if err != nil {
		return nil, err
	}
	return &shared.DecodeResponse{
		Make:         "Ford",
		SerialNumber: d.req.SerialNumber,
		UnlockCode:   code,
	}, nil
}

func (d *fordDecoder) Compute() (string, error) {
	serial := strings.ToUpper(strings.TrimSpace(d.req.SerialNumber))
	if !fordSerialPattern.MatchString(serial) {
		return "", newError(ErrInvalidInput, "Invalid Ford serial format (Expected format: M123456 or V123456)")
	}

	index, err := strconv.ParseInt(serial[1:], 10, 64)
	if err != nil {
		return "", newError(ErrInvalidInput, "Invalid Ford serial format (Expected format: M123456 or V123456)")
	}
	offset := fordOffset(serial[0], index)

	code, err := readTableEntry(d.table, offset)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", code), nil
}

func fordOffset(prefix byte, index int64) int64 {
	offset := index * 2
	if prefix == 'V' {
		offset += fordVOffset
	}
	return offset
}

// readTableEntry opens the table for each call; the file is static and
// the read is a single 2-byte pread.
func readTableEntry(path string, offset int64) (uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &Error{Kind: ErrResourceUnavailable, Msg: "Ford radio code table unavailable", Err: err}
	}
	defer f.Close()

	var buf [2]byte
	n, err := f.ReadAt(buf[:], offset)
	if n < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			return 0, newError(ErrOutOfRange, "Serial number out of range")
		}
		return 0, &Error{Kind: ErrResourceUnavailable, Msg: "Ford radio code table read failed", Err: err}
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}
