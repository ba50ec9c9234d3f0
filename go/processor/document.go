// Package processor assembles replacement rules and decoration features into
// the processor document consumed by world generation.
package processor

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/wotr-tools/blockweights/go/config"
	"github.com/wotr-tools/blockweights/go/weights"
)

// Processor is one entry of a document's processor list.
type Processor interface {
	Type() string
}

// Document is the root of a generated processor file.
type Document struct {
	Processors []Processor `json:"processors"`
}

// SpotGradient is the primary replacement processor.
type SpotGradient struct {
	ProcessorType string                `json:"processor_type"`
	NoiseScaleX   *float64              `json:"noise_scale_x,omitempty"`
	NoiseScaleY   *float64              `json:"noise_scale_y,omitempty"`
	NoiseScaleZ   *float64              `json:"noise_scale_z,omitempty"`
	Replacements  []weights.Replacement `json:"replacements"`
}

func (p *SpotGradient) Type() string { return p.ProcessorType }

type Mushrooms struct {
	ProcessorType string  `json:"processor_type"`
	Rarity        float64 `json:"rarity"`
}

func (p *Mushrooms) Type() string { return p.ProcessorType }

type Vines struct {
	ProcessorType string  `json:"processor_type"`
	Rarity        float64 `json:"rarity"`
}

func (p *Vines) Type() string { return p.ProcessorType }

type ChestType struct {
	ChestType string `json:"chest_type"`
	Weight    int    `json:"weight"`
}

type RiftChests struct {
	ProcessorType string      `json:"processor_type"`
	BaseLootTable string      `json:"base_loot_table"`
	Rarity        float64     `json:"rarity"`
	ChestTypes    []ChestType `json:"chest_types"`
}

func (p *RiftChests) Type() string { return p.ProcessorType }

type BlockState struct {
	Name       string            `json:"Name"`
	Properties map[string]string `json:"Properties"`
}

// Attachment places a block against the faces of existing blocks.
type Attachment struct {
	ProcessorType string     `json:"processor_type"`
	RequiresSides int        `json:"requires_sides"`
	RequiresUp    bool       `json:"requires_up"`
	RequiresDown  bool       `json:"requires_down"`
	Rarity        float64    `json:"rarity"`
	BlockState    BlockState `json:"blockstate"`
}

func (p *Attachment) Type() string { return p.ProcessorType }

const (
	TypeMushrooms  = "wotr:mushrooms"
	TypeVines      = "wotr:vines"
	TypeRiftChests = "wotr:rift_chests"
	TypeAttachment = "wotr:attachment"
)

// Assemble wraps rules in the primary processor and appends the selected
// features after it: mushrooms, vines, rift chests, then attachments in
// configured order. Attachments that do not parse are left out and
// returned as errors; everything else is still assembled.
func Assemble(rules []weights.Replacement, processorType string, f *config.Features) (*Document, []error) {
	if rules == nil {
		rules = []weights.Replacement{}
	}
	primary := &SpotGradient{ProcessorType: processorType, Replacements: rules}
	doc := &Document{Processors: []Processor{primary}}
	if f == nil {
		return doc, nil
	}

	if ns := f.NoiseScale; ns != nil {
		x, y, z := ns.X, ns.Y, ns.Z
		primary.NoiseScaleX, primary.NoiseScaleY, primary.NoiseScaleZ = &x, &y, &z
	}
	if f.Mushrooms != nil {
		doc.Processors = append(doc.Processors, &Mushrooms{ProcessorType: TypeMushrooms, Rarity: f.Mushrooms.Rarity})
	}
	if f.Vines != nil {
		doc.Processors = append(doc.Processors, &Vines{ProcessorType: TypeVines, Rarity: f.Vines.Rarity})
	}
	if rc := f.RiftChests; rc != nil {
		chests := &RiftChests{
			ProcessorType: TypeRiftChests,
			BaseLootTable: rc.BaseLootTable,
			Rarity:        rc.Rarity,
			ChestTypes:    make([]ChestType, len(rc.ChestTypes)),
		}
		for i, ct := range rc.ChestTypes {
			chests.ChestTypes[i] = ChestType{ChestType: ct.ChestType, Weight: ct.Weight}
		}
		doc.Processors = append(doc.Processors, chests)
	}

	var errs []error
	for _, a := range f.Attachments {
		if a.Name == "" {
			continue
		}
		p, err := attachment(a)
		if err != nil {
			errs = append(errs, &weights.MalformedInputError{Source: "attachment", Record: a.Name, Err: err})
			continue
		}
		doc.Processors = append(doc.Processors, p)
	}
	return doc, errs
}

// attachment converts a configured attachment; blank rarity and sides mean 0.
func attachment(a config.Attachment) (*Attachment, error) {
	p := &Attachment{
		ProcessorType: TypeAttachment,
		RequiresUp:    a.RequiresUp,
		RequiresDown:  a.RequiresDown,
		BlockState:    BlockState{Name: a.Name, Properties: map[string]string{}},
	}
	if s := strings.TrimSpace(a.Sides); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrap(err, "requires_sides")
		}
		p.RequiresSides = n
	}
	if s := strings.TrimSpace(a.Rarity); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrap(err, "rarity")
		}
		if r < 0 || r > 1 {
			return nil, errors.Errorf("rarity %v outside [0, 1]", r)
		}
		p.Rarity = r
	}
	for k, v := range a.Properties {
		if k != "" && v != "" {
			p.BlockState.Properties[k] = v
		}
	}
	return p, nil
}

// Encode serializes doc with four space indentation and checks the result
// against the document schema.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding processor document")
	}
	if err := Validate(buf.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
