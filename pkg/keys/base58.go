package keys

import (
	"fmt"

	"github.com/mr-tron/base58"
)

func Base58Encode(bytes []byte) string {
	return base58.FastBase58Encoding(bytes)
}

func Base58Decode(str string) ([]byte, error) {
	return base58.FastBase58Decoding(str)
}

// Base58EncodeCheck appends a 4-byte sha256d checksum before encoding.
// https://en.bitcoin.it/Base58Check_encoding
func Base58EncodeCheck(payload []byte) string {
	sum := DoubleSha256(payload)
	data := make([]byte, 0, len(payload)+4)
	data = append(data, payload...)
	data = append(data, sum[0:4]...)
	return base58.FastBase58Encoding(data)
}

// Base58DecodeCheck decodes and strips the checksum.
func Base58DecodeCheck(str string) ([]byte, error) {
	data, err := Base58Decode(str)
	if err != nil {
		return nil, err
	}
	if len(data) < 5 {
		return nil, fmt.Errorf("Base58Check: too short")
	}
	split := len(data) - 4
	sum := DoubleSha256(data[:split])
	check := data[split:]
	if check[0] != sum[0] || check[1] != sum[1] || check[2] != sum[2] || check[3] != sum[3] {
		return nil, fmt.Errorf("Base58Check: wrong checksum")
	}
	return data[:split], nil
}
