// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"
	"slices"

	"github.com/BoostyLabs/etcher/internal/sequencereader"
)

// Message defines untyped runestone content: tagged field values
// followed by the edicts of the body.
type Message struct {
	Edicts []Edict
	Fields map[Tag][]*big.Int
}

// ParseMessage parses Message from integer sequence.
// Unknown odd tags are skipped with their values, unknown even tags produce ErrCenotaph.
func ParseMessage(sr *sequencereader.SequenceReader[*big.Int]) (*Message, error) {
	message := &Message{Fields: make(map[Tag][]*big.Int)}

	for sr.HasNext() {
		tag, _ := sr.Next()
		if TagBody.Equal(tag) {
			edicts, err := ParseEdicts(sr)
			if err != nil {
				return nil, err
			}

			message.Edicts = edicts
			break
		}

		unknown := tag.Cmp(TagNop.BigInt()) > 0
		if unknown && tag.Bit(0) == 0 {
			return nil, ErrCenotaph
		}

		value, err := sr.Next()
		if err != nil {
			return nil, ErrTruncated
		}

		if !unknown {
			key := Tag(tag.Uint64())
			message.Fields[key] = append(message.Fields[key], value)
		}
	}

	if len(message.Fields) == 0 {
		message.Fields = nil
	}

	return message, nil
}

// ToIntSeq returns Message as sequence on integers, fields ordered by tag.
func (message *Message) ToIntSeq() []*big.Int {
	tags := make([]Tag, 0, len(message.Fields))
	for tag := range message.Fields {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	sequence := make([]*big.Int, 0, 2*len(message.Fields)+1+edictSize*len(message.Edicts))
	for _, tag := range tags {
		for _, value := range message.Fields[tag] {
			sequence = append(sequence, tag.BigInt(), value)
		}
	}

	if message.Edicts != nil {
		sequence = append(sequence, TagBody.BigInt())
		sequence = append(sequence, EncodeEdicts(message.Edicts)...)
	}

	return sequence
}
