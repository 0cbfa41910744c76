package protocol

import (
	"bytes"
	"testing"
)

func TestVLQEncoding(t *testing.T) {
	testCases := []struct {
		value int32
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{95, []byte{0x5F}},
		{96, []byte{0x80, 0x60}},
		{-1, []byte{0x7F}},
		{-32, []byte{0x60}},
		{-33, []byte{0xFF, 0x5F}},
		{1000, []byte{0x87, 0x68}},
		{-1000, []byte{0xF8, 0x18}},
		{1 << 20, []byte{0xC0, 0x80, 0x00}},
	}

	for _, tc := range testCases {
		output := NewScratchOutput()
		EncodeVLQInt(output, tc.value)
		encoded := output.Result()
		if !bytes.Equal(encoded, tc.want) {
			t.Errorf("EncodeVLQInt(%d) = % X, want % X", tc.value, encoded, tc.want)
			continue
		}

		data := encoded
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("DecodeVLQInt(% X): %v", tc.want, err)
			continue
		}
		if decoded != tc.value {
			t.Errorf("DecodeVLQInt(% X) = %d, want %d", tc.want, decoded, tc.value)
		}
		if len(data) != 0 {
			t.Errorf("DecodeVLQInt(% X) left %d bytes", tc.want, len(data))
		}
	}
}

func TestVLQExtremes(t *testing.T) {
	for _, v := range []int32{2147483647, -2147483648} {
		output := NewScratchOutput()
		EncodeVLQInt(output, v)
		if output.Len() != maxVLQBytes {
			t.Errorf("EncodeVLQInt(%d) used %d bytes, want %d", v, output.Len(), maxVLQBytes)
		}
		data := output.Result()
		got, err := DecodeVLQInt(&data)
		if err != nil || got != v {
			t.Errorf("DecodeVLQInt = %d, %v; want %d", got, err, v)
		}
	}
}

func TestVLQStringAdvancesSlice(t *testing.T) {
	output := NewScratchOutput()
	EncodeVLQString(output, "pinMode")
	EncodeVLQUint(output, 7)

	data := output.Result()
	s, err := DecodeVLQString(&data)
	if err != nil {
		t.Fatalf("DecodeVLQString: %v", err)
	}
	if s != "pinMode" {
		t.Errorf("DecodeVLQString = %q, want %q", s, "pinMode")
	}
	v, err := DecodeVLQUint(&data)
	if err != nil || v != 7 {
		t.Errorf("trailing DecodeVLQUint = %d, %v; want 7", v, err)
	}
}

func TestVLQBufferTooSmall(t *testing.T) {
	data := []byte{0x80} // continuation bit with nothing after it
	if _, err := DecodeVLQInt(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}

	data = []byte{0x05, 'a', 'b'} // length 5, only 2 bytes
	if _, err := DecodeVLQBytes(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall for short bytes, got %v", err)
	}
}

func TestVLQTooLong(t *testing.T) {
	data := []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	if _, err := DecodeVLQInt(&data); err != ErrInvalidVLQ {
		t.Errorf("Expected ErrInvalidVLQ, got %v", err)
	}
}
