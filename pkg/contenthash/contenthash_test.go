package contenthash

import (
	"bytes"
	"encoding/base64"
	"hash"
	"testing"
)

func decodeBase64(t *testing.T, s string) []byte {
	t.Helper()

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("failed to decode base64 %q: %v", s, err)
	}

	return b
}

// Reference hashes verified against rclone v1.73.1's quickxorhash implementation.
func TestKnownVectors(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		expect string
	}{
		{name: "empty string", input: []byte(""), expect: "AAAAAAAAAAAAAAAAAAAAAAAAAAA="},
		{name: "hello", input: []byte("hello"), expect: "aCgDG9jwBgAAAAAABQAAAAAAAAA="},
		{name: "hello world", input: []byte("hello world"), expect: "aCgDG9jwBhDc4Q1yawMZAAAAAAA="},
		{name: "1000 zero bytes", input: make([]byte, 1000), expect: "AAAAAAAAAAAAAAAA6AMAAAAAAAA="},
		{name: "1000 0xFF bytes", input: bytes.Repeat([]byte{0xFF}, 1000), expect: "Yxvb2MY2trGNbWxj89jYOc5xjnM="},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := New()
			_, err := h.Write(tc.input)
			if err != nil {
				t.Fatalf("Write error: %v", err)
			}

			got := h.Sum(nil)
			want := decodeBase64(t, tc.expect)

			if !bytes.Equal(got, want) {
				t.Errorf("hash mismatch\n  got:  %s\n  want: %s",
					base64.StdEncoding.EncodeToString(got), tc.expect)
			}
		})
	}
}

func TestIncrementalWrite(t *testing.T) {
	input := make([]byte, 1024)
	for i := range input {
		input[i] = byte(i)
	}

	h1 := New()
	_, _ = h1.Write(input)
	oneShot := h1.Sum(nil)

	want := decodeBase64(t, "h7xr2dbCayZCQYR9KKhlwDuT4UI=")
	if !bytes.Equal(oneShot, want) {
		t.Fatalf("one-shot hash mismatch\n  got:  %s\n  want: h7xr2dbCayZCQYR9KKhlwDuT4UI=",
			base64.StdEncoding.EncodeToString(oneShot))
	}

	chunkSizes := []int{1, 7, 64, 13, 128}
	h2 := New()
	offset := 0

	for _, sz := range chunkSizes {
		end := offset + sz
		if end > len(input) {
			end = len(input)
		}
		_, _ = h2.Write(input[offset:end])
		offset = end
	}

	if offset < len(input) {
		_, _ = h2.Write(input[offset:])
	}

	incremental := h2.Sum(nil)

	if !bytes.Equal(oneShot, incremental) {
		t.Errorf("incremental write mismatch\n  one-shot:    %x\n  incremental: %x",
			oneShot, incremental)
	}
}

func TestReset(t *testing.T) {
	h := New()
	_, _ = h.Write([]byte("hello"))
	helloHash := h.Sum(nil)

	h.Reset()
	_, _ = h.Write([]byte("world"))
	worldHash := h.Sum(nil)

	if bytes.Equal(worldHash, helloHash) {
		t.Error("after Reset, hash of 'world' equals hash of 'hello'")
	}
}

func TestSumIsNonDestructive(t *testing.T) {
	h := New()
	_, _ = h.Write([]byte("hello"))

	sum1 := h.Sum(nil)
	sum2 := h.Sum(nil)

	if !bytes.Equal(sum1, sum2) {
		t.Errorf("calling Sum twice gave different results\n  first:  %x\n  second: %x",
			sum1, sum2)
	}
}

var _ hash.Hash = (*digest)(nil)

func TestHashBytes(t *testing.T) {
	got := HashBytes([]byte("hello"))
	want := hexOf(decodeBase64(t, "aCgDG9jwBgAAAAAABQAAAAAAAAA="))

	if got != want {
		t.Errorf("HashBytes(%q) = %s, want %s", "hello", got, want)
	}

	if got2 := HashBytes([]byte("hello")); got2 != got {
		t.Error("HashBytes is not deterministic")
	}
}

func hexOf(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}
