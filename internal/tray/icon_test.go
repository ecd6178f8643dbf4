package tray

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIcon(t *testing.T) {
	img := renderIcon()
	require.Equal(t, iconSize, img.Bounds().Dx())
	require.Equal(t, iconSize, img.Bounds().Dy())

	// 中心是白色截图
	c := img.RGBAAt(8, 8)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(255), c.A)
	// 角落在外圆角之外
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
}

func TestEncodeICO(t *testing.T) {
	img := renderIcon()
	data := encodeICO(img)

	le := binary.LittleEndian
	assert.Equal(t, uint16(1), le.Uint16(data[2:]))
	assert.Equal(t, uint16(1), le.Uint16(data[4:]))
	assert.Equal(t, byte(16), data[6])
	size := le.Uint32(data[6+8:])
	offset := le.Uint32(data[6+12:])
	assert.Equal(t, uint32(22), offset)
	assert.Equal(t, int(offset+size), len(data))

	// 左下角像素在数据开头（BGRA）
	px := data[22+40:]
	bottomLeft := img.RGBAAt(0, 15)
	assert.Equal(t, bottomLeft.A, px[3])
}
