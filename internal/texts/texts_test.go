package texts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techstore/internal/texts"
)

func TestDefaultCopy(t *testing.T) {
	tx := texts.Default()
	assert.NotEmpty(t, tx.Start)
	assert.Equal(t, "Корзина", tx.Menu.Cart)
	assert.Equal(t, "Смартфон", tx.Category("СМАРТФОНЫ").Item)
	assert.Equal(t, "Товар", tx.Category("ДРОНЫ").Item)
	assert.Contains(t, tx.Answers, tx.Menu.Site)
	assert.Equal(t, "Фото", tx.Broadcast.Kinds["photo"])
}

func TestFormat(t *testing.T) {
	got := texts.Format("{sent} из {total}, {unknown}", "sent", "2", "total", "3")
	assert.Equal(t, "2 из 3, {unknown}", got)
}

func TestParseRequiresCoreEntries(t *testing.T) {
	_, err := texts.Parse([]byte("start: hi\n"))
	require.Error(t, err)
}
