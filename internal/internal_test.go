package internal

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failWriter struct {
	after int
}

var errFull = errors.New("full")

func (fw *failWriter) Write(p []byte) (n int, err error) {
	if fw.after == 0 {
		return 0, errFull
	}
	fw.after--
	return len(p), nil
}

func TestErrWriter(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	w := NewErrWriter(buf)
	fmt.Fprintf(w, "%v\n", 1)
	assert.NoError(w.Err)
	assert.Equal("1\n", buf.String())

	w = NewErrWriter(&failWriter{after: 1})
	_, err := w.Write([]byte("ok"))
	assert.NoError(err)
	_, err = w.Write([]byte("fails"))
	assert.ErrorIs(err, errFull)
	n, err := w.Write([]byte("still fails"))
	assert.Equal(0, n)
	assert.ErrorIs(err, errFull)
	assert.ErrorIs(w.Err, errFull)
}

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]string{"A": "1"}
	b := map[string]string{"B": "2", "C": "3"}

	all := maps.Collect(IterSeq2Concat(maps.All(a), maps.All(b)))
	assert.Equal(map[string]string{"A": "1", "B": "2", "C": "3"}, all)

	var keys []string
	for k := range IterSeq2Concat(maps.All(a), maps.All(b)) {
		keys = append(keys, k)
		break
	}
	assert.Equal([]string{"A"}, keys)
}
