package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreator = common.HexToAddress("0x1111111111111111111111111111111111111111")

func TestDecodeV5FillsDefaults(t *testing.T) {
	record, err := decodeV5([]interface{}{
		testCreator,
		"ipfs://meta-1",
		big.NewInt(5_000_000),
		uint32(12),
		true,
	})
	require.NoError(t, err)

	assert.Equal(t, "ipfs://meta-1", record.MetadataURI)
	assert.Equal(t, testCreator, record.Creator)
	assert.Equal(t, int64(5_000_000), record.State.GrossRaisedNative.Int64())
	// v5 合约没有小费与关闭字段，解码结果用默认值补齐
	assert.Equal(t, int64(0), record.State.TipsReceivedNative.Int64())
	assert.False(t, record.State.Closed)
	assert.Equal(t, int64(12), record.State.EditionsMinted)
	assert.True(t, record.State.Active)
}

func TestDecodeV6CarriesTips(t *testing.T) {
	record, err := decodeV6([]interface{}{
		testCreator,
		"ipfs://meta-2",
		big.NewInt(9_000),
		big.NewInt(250),
		uint32(3),
		false,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(250), record.State.TipsReceivedNative.Int64())
	assert.False(t, record.State.Active)
	assert.False(t, record.State.Closed)
}

func TestDecodeV7FullShape(t *testing.T) {
	record, err := decodeV7([]interface{}{
		testCreator,
		"ipfs://meta-3",
		big.NewInt(7_777),
		big.NewInt(33),
		uint32(8),
		uint32(100),
		true,
		true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7_777), record.State.GrossRaisedNative.Int64())
	assert.Equal(t, int64(33), record.State.TipsReceivedNative.Int64())
	assert.True(t, record.State.Active)
	assert.True(t, record.State.Closed)
}

func TestDecodeV8IgnoresImmediatePayout(t *testing.T) {
	record, err := decodeV8([]interface{}{
		testCreator,
		"ipfs://meta-4",
		big.NewInt(1),
		big.NewInt(2),
		uint32(1),
		uint32(10),
		true,
		false,
		true, // immediatePayout 不进入规范形状
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), record.State.GrossRaisedNative.Int64())
	assert.Equal(t, int64(2), record.State.TipsReceivedNative.Int64())
	assert.True(t, record.State.Active)
	assert.False(t, record.State.Closed)
}

func TestDecodeRejectsWrongArity(t *testing.T) {
	_, err := decodeV5([]interface{}{testCreator, "uri"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = decodeV8([]interface{}{testCreator, "uri", big.NewInt(1), big.NewInt(2), uint32(1), uint32(10), true, false})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeRejectsWrongFieldType(t *testing.T) {
	// raised 应为 *big.Int，这里给了字符串
	_, err := decodeV5([]interface{}{testCreator, "uri", "not-a-number", uint32(1), true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecoderForUnsupportedVersion(t *testing.T) {
	_, err := decoderFor("v4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = decoderFor("V7")
	assert.NoError(t, err)
}

func TestSupportedVersions(t *testing.T) {
	versions := SupportedVersions()
	assert.Len(t, versions, len(decoders))
	for _, v := range versions {
		_, ok := decoders[v]
		assert.True(t, ok, "version %s missing decoder", v)
	}
}
