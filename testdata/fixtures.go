// Package testdata provides recorded landmark frames for tests.
package testdata

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"

	"github.com/ayusman/abhinaya/internal/landmark"
)

//go:embed frames/*
var framesFS embed.FS

// Raw returns the bytes of a fixture file.
func Raw(name string) ([]byte, error) {
	data, err := framesFS.ReadFile("frames/" + name)
	if err != nil {
		return nil, fmt.Errorf("load frame %s: %w", name, err)
	}
	return data, nil
}

// LoadFrame loads a single landmarks_data message by name.
func LoadFrame(name string) (landmark.Frame, error) {
	data, err := Raw(name)
	if err != nil {
		return landmark.Frame{}, err
	}
	f, err := landmark.Decode(data)
	if err != nil {
		return landmark.Frame{}, fmt.Errorf("decode frame %s: %w", name, err)
	}
	return f, nil
}

// LoadSequence loads a file holding one message per line and returns the
// raw messages in order.
func LoadSequence(name string) ([][]byte, error) {
	data, err := Raw(name)
	if err != nil {
		return nil, err
	}

	var msgs [][]byte
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if _, err := landmark.Decode(line); err != nil {
			return nil, fmt.Errorf("decode %s line %d: %w", name, len(msgs)+1, err)
		}
		msgs = append(msgs, bytes.Clone(line))
	}
	return msgs, sc.Err()
}
