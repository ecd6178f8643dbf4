package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWriteImage(t *testing.T) {
	m := &Memory{}
	assert.Nil(t, m.Image())

	src := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, m.WriteImage(src))
	src[0] = 0
	// 写入时复制数据
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, m.Image())
}

func TestMemoryWriteError(t *testing.T) {
	m := &Memory{Err: ErrUnavailable}
	err := m.WriteImage([]byte{1})
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Nil(t, m.Image())
}

func TestSystemClipboardRejectsEmpty(t *testing.T) {
	assert.Error(t, NewClipboard().WriteImage(nil))
}
