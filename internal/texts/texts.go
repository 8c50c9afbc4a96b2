// Package texts holds the bot's user-facing copy.
package texts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed texts.yaml
var defaultYAML []byte

// CategoryNames are the inflected labels of a catalog category.
type CategoryNames struct {
	Item  string `yaml:"item"`
	Of    string `yaml:"of"`
	OneOf string `yaml:"one_of"`
}

type Texts struct {
	Start string `yaml:"start"`
	Menu  struct {
		Products   string `yaml:"products"`
		Site       string `yaml:"site"`
		Contacts   string `yaml:"contacts"`
		About      string `yaml:"about"`
		Requisites string `yaml:"requisites"`
		Cart       string `yaml:"cart"`
	} `yaml:"menu"`
	Answers          map[string]string        `yaml:"answers"`
	Categories       map[string]CategoryNames `yaml:"categories"`
	FallbackCategory CategoryNames            `yaml:"fallback_category"`
	Catalog          struct {
		ChooseCategory     string `yaml:"choose_category"`
		ChooseManufacturer string `yaml:"choose_manufacturer"`
		NoManufacturers    string `yaml:"no_manufacturers"`
		ChooseModel        string `yaml:"choose_model"`
		NoModels           string `yaml:"no_models"`
		Unavailable        string `yaml:"unavailable"`
		OutOfStock         string `yaml:"out_of_stock"`
		OnlyColor          string `yaml:"only_color"`
		OnlyMemory         string `yaml:"only_memory"`
		CaptionColor       string `yaml:"caption_color"`
		CaptionMemory      string `yaml:"caption_memory"`
		CaptionPrice       string `yaml:"caption_price"`
	} `yaml:"catalog"`
	Buttons struct {
		Back      string `yaml:"back"`
		Color     string `yaml:"color"`
		Memory    string `yaml:"memory"`
		Buy       string `yaml:"buy"`
		AddToCart string `yaml:"add_to_cart"`
		Prev      string `yaml:"prev"`
		Next      string `yaml:"next"`
		PagePrev  string `yaml:"page_prev"`
		PageNext  string `yaml:"page_next"`
	} `yaml:"buttons"`
	Cart struct {
		Added       string `yaml:"added"`
		Full        string `yaml:"full"`
		Removed     string `yaml:"removed"`
		Empty       string `yaml:"empty"`
		Cleared     string `yaml:"cleared"`
		Header      string `yaml:"header"`
		Line        string `yaml:"line"`
		MissingLine string `yaml:"missing_line"`
		Footer      string `yaml:"footer"`
		Page        string `yaml:"page"`
	} `yaml:"cart"`
	Order struct {
		AdminRequest   string `yaml:"admin_request"`
		ContactManager string `yaml:"contact_manager"`
	} `yaml:"order"`
	Broadcast struct {
		Forbidden       string            `yaml:"forbidden"`
		ChooseKind      string            `yaml:"choose_kind"`
		Kinds           map[string]string `yaml:"kinds"`
		SendMedia       string            `yaml:"send_media"`
		WrongMedia      string            `yaml:"wrong_media"`
		AskCaption      string            `yaml:"ask_caption"`
		AddCaption      string            `yaml:"add_caption"`
		SkipCaption     string            `yaml:"skip_caption"`
		EnterCaption    string            `yaml:"enter_caption"`
		CaptionTooLong  string            `yaml:"caption_too_long"`
		When            string            `yaml:"when"`
		SendNow         string            `yaml:"send_now"`
		Schedule        string            `yaml:"schedule"`
		EnterTime       string            `yaml:"enter_time"`
		BadTime         string            `yaml:"bad_time"`
		PastTime        string            `yaml:"past_time"`
		Scheduled       string            `yaml:"scheduled"`
		Done            string            `yaml:"done"`
		Failed          string            `yaml:"failed"`
		Cancelled       string            `yaml:"cancelled"`
		NothingToCancel string            `yaml:"nothing_to_cancel"`
	} `yaml:"broadcast"`
}

// Default returns the embedded copy.
func Default() *Texts {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("texts: embedded copy is invalid: %v", err))
	}
	return t
}

// Load reads copy from path, falling back to the embedded file when path is
// empty.
func Load(path string) (*Texts, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Texts, error) {
	var t Texts
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("texts: %w", err)
	}
	if t.Start == "" || t.Menu.Products == "" || t.Menu.Cart == "" {
		return nil, fmt.Errorf("texts: start and menu entries are required")
	}
	return &t, nil
}

// Category returns the labels for a catalog category.
func (t *Texts) Category(name string) CategoryNames {
	if c, ok := t.Categories[name]; ok {
		return c
	}
	return t.FallbackCategory
}

// Format substitutes {key} placeholders with values given as key, value
// pairs. Unknown placeholders are left as is.
func Format(tmpl string, kv ...string) string {
	if len(kv) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
