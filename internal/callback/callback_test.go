package callback_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techstore/internal/callback"
	"techstore/internal/domain"
)

func TestRoundTrip(t *testing.T) {
	actions := []callback.Action{
		{Kind: callback.Category, Category: "СМАРТ ЧАСЫ"},
		{Kind: callback.Manufacturer, Category: "СМАРТФОНЫ", Manufacturer: "Apple"},
		{Kind: callback.Model, Model: "15 Pro_Max"},
		{Kind: callback.Model, Model: "odd|name 100%"},
		{Kind: callback.Cycle, Axis: domain.AxisMemory, Dir: domain.Prev, Model: "Galaxy S24 Ultra"},
		{Kind: callback.Cycle, Axis: domain.AxisColor, Dir: domain.Next, Model: "SE"},
		{Kind: callback.AddToCart, ProductID: 44},
		{Kind: callback.Buy, ProductID: 7},
		{Kind: callback.DeleteFromCart, UserID: 1338143348, ProductID: 512},
		{Kind: callback.CartPage, UserID: 1338143348, Page: 3},
		{Kind: callback.BackToCategory},
		{Kind: callback.BackToCard, Manufacturer: "Samsung"},
		{Kind: callback.Noop, Tag: callback.TagOutOfStock},
		{Kind: callback.MediaType, Media: domain.MediaVideo},
		{Kind: callback.CaptionChoice, Yes: true},
		{Kind: callback.WhenChoice},
	}
	for _, a := range actions {
		data, err := callback.Encode(a)
		require.NoError(t, err, a.Kind)
		assert.LessOrEqual(t, len(data), callback.MaxLen)
		got, err := callback.Decode(data)
		require.NoError(t, err, data)
		if diff := cmp.Diff(a, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", data, diff)
		}
	}
}

func TestEncodeKeepsCyrillicRaw(t *testing.T) {
	data, err := callback.Encode(callback.Action{Kind: callback.Category, Category: "НАУШНИКИ"})
	require.NoError(t, err)
	assert.Equal(t, "1|c|НАУШНИКИ", data)
}

func TestEncodeRejectsOversize(t *testing.T) {
	_, err := callback.Encode(callback.Action{Kind: callback.Model, Model: strings.Repeat("Ж", 40)})
	assert.ErrorIs(t, err, callback.ErrTooLong)
}

func TestDecodeLegacy(t *testing.T) {
	cases := map[string]callback.Action{
		"category_СМАРТ ЧАСЫ":              {Kind: callback.Category, Category: "СМАРТ ЧАСЫ"},
		"manufacturer_СМАРТФОНЫ_Apple":     {Kind: callback.Manufacturer, Category: "СМАРТФОНЫ", Manufacturer: "Apple"},
		"model_15_Pro_Max":                 {Kind: callback.Model, Model: "15 Pro Max"},
		"next_color_15_Pro_Max":            {Kind: callback.Cycle, Axis: domain.AxisColor, Dir: domain.Next, Model: "15 Pro Max"},
		"previous_memory_Galaxy_S24":       {Kind: callback.Cycle, Axis: domain.AxisMemory, Dir: domain.Prev, Model: "Galaxy S24"},
		"add_to_cart_44":                   {Kind: callback.AddToCart, ProductID: 44},
		"buy_44":                           {Kind: callback.Buy, ProductID: 44},
		"delete_product_1338143348_44":     {Kind: callback.DeleteFromCart, UserID: 1338143348, ProductID: 44},
		"cart_page_1338143348_2":           {Kind: callback.CartPage, UserID: 1338143348, Page: 2},
		"back_to_categories":               {Kind: callback.BackToCategory},
		"back_to_manufacturer_Apple":       {Kind: callback.BackToCard, Manufacturer: "Apple"},
		"out_of_stock":                     {Kind: callback.Noop, Tag: callback.TagOutOfStock},
		"color_ignor":                      {Kind: callback.Noop, Tag: callback.TagColor},
		"memory_ignor":                     {Kind: callback.Noop, Tag: callback.TagMemory},
		"media_photo":                      {Kind: callback.MediaType, Media: domain.MediaPhoto},
		"add_caption":                      {Kind: callback.CaptionChoice, Yes: true},
		"skip_caption":                     {Kind: callback.CaptionChoice},
		"send_now":                         {Kind: callback.WhenChoice, Yes: true},
		"schedule":                         {Kind: callback.WhenChoice},
	}
	for data, want := range cases {
		want.Legacy = true
		got, err := callback.Decode(data)
		require.NoError(t, err, data)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", data, diff)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, data := range []string{
		"", "1|", "1|zz|x", "1|a|notanumber", "1|y|x|n|15", "1|o|bad%2", "1|o|a|b",
		"add_to_cart_", "delete_product_12", "cart_page_1_x", "whatever",
		"1|p|5|-1", "1|p|5|100000", "cart_page_1_-2", "cart_page_1_99999",
	} {
		_, err := callback.Decode(data)
		assert.ErrorIs(t, err, callback.ErrMalformed, data)
	}
}
