// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/aviate-labs/leb128"
	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes/utils"
	bitcoinutils "github.com/BoostyLabs/etcher/bitcoin/utils"
	"github.com/BoostyLabs/etcher/internal/numbers"
	"github.com/BoostyLabs/etcher/internal/sequencereader"
)

const (
	// MaxDivisibility defines maximum divisibility for runes.
	MaxDivisibility byte = 38
	// MaxPushSize defines maximum size of the single data push in the runestone script.
	MaxPushSize = txscript.MaxScriptElementSize
)

// ErrCenotaph defines invalid runestone produced malformed payload.
var ErrCenotaph = errors.New("cenotaph")

// ErrOverflow defines that payload contains value out of the field range.
var ErrOverflow = errors.New("payload overflow")

// ErrTruncated defines that payload is do not have required fields.
var ErrTruncated = errors.New("truncated payload")

// Runestone abstractly defines runestone fields.
type Runestone struct {
	Edicts  []Edict
	Etching *Etching
	Mint    *RuneID
	Pointer *uint32
}

// ParseRunestone parses Runestone from script code.
func ParseRunestone(script []byte) (runestone *Runestone, err error) {
	runestone = new(Runestone)
	payload, err := PreparePayload(script)
	if err != nil {
		return nil, err
	}

	sequence, err := PayloadIntoIntSequence(payload)
	if err != nil {
		return nil, err
	}

	return runestone, runestone.parse(sequencereader.New(sequence))
}

// parse parses runestone fields from integer sequence.
func (runestone *Runestone) parse(sr *sequencereader.SequenceReader[*big.Int]) error {
	message, err := ParseMessage(sr)
	if err != nil {
		return err
	}

	var etching, terms, turbo bool
	flags, ok := message.Fields[TagFlags]
	if ok {
		if len(flags) != 1 {
			return ErrCenotaph
		}

		etching = TakeFlag(flags[0], FlagEtching)
		terms = TakeFlag(flags[0], FlagTerms)
		turbo = TakeFlag(flags[0], FlagTurbo)
		if flags[0].Sign() != 0 {
			return ErrCenotaph
		}

		delete(message.Fields, TagFlags)
	}

	if (terms || turbo) && !etching {
		return ErrCenotaph
	}

	if etching {
		runestone.etching().Turbo = turbo
	}

	if terms {
		runestone.terms()
	}

	for tag, ints := range message.Fields {
		var field *utils.Condition
		switch tag {
		case TagMint:
			field = utils.IfLen(ints, 2).Then(func() error {
				if !ints[0].IsUint64() || !numbers.IsUint32(ints[1]) {
					return ErrOverflow
				}

				runestone.mint().Block = ints[0].Uint64()
				runestone.mint().TxID = uint32(ints[1].Uint64())
				return nil
			})
		case TagPointer:
			field = utils.IfLen(ints, 1).Then(func() error {
				if !numbers.IsUint32(ints[0]) {
					return ErrOverflow
				}

				*runestone.pointer() = uint32(ints[0].Uint64())
				return nil
			})
		case TagDivisibility:
			field = utils.IfLen(ints, 1).And(etching).Then(func() error {
				if !ints[0].IsUint64() || ints[0].Uint64() > uint64(MaxDivisibility) {
					return fmt.Errorf("%w: too large divisibility", ErrOverflow)
				}

				divisibility := byte(ints[0].Uint64())
				runestone.etching().Divisibility = &divisibility
				return nil
			})
		case TagPremine:
			field = utils.IfLen(ints, 1).And(etching).Then(func() error {
				runestone.etching().Premine = ints[0]
				return nil
			})
		case TagRune:
			field = utils.IfLen(ints, 1).And(etching).Then(func() error {
				name, err := NewRuneFromNumber(ints[0])
				runestone.etching().Rune = name
				return err
			})
		case TagSpacers:
			field = utils.IfLen(ints, 1).And(etching).Then(func() error {
				if !numbers.IsUint32(ints[0]) || uint32(ints[0].Uint64()) > MaxSpacers {
					return fmt.Errorf("%w: too large spacers", ErrOverflow)
				}

				spacers := uint32(ints[0].Uint64())
				runestone.etching().Spacers = &spacers
				return nil
			})
		case TagSymbol:
			field = utils.IfLen(ints, 1).And(etching).Then(func() error {
				if !numbers.IsUint32(ints[0]) || !utf8.ValidRune(rune(ints[0].Uint64())) {
					return fmt.Errorf("%w: %w", ErrOverflow, ErrInvalidSymbolCodePoint)
				}

				symbol := rune(ints[0].Uint64())
				runestone.etching().Symbol = &symbol
				return nil
			})
		case TagAmount:
			field = utils.IfLen(ints, 1).And(terms).Then(func() error {
				runestone.terms().Amount = ints[0]
				return nil
			})
		case TagCap:
			field = utils.IfLen(ints, 1).And(terms).Then(func() error {
				runestone.terms().Cap = ints[0]
				return nil
			})
		case TagHeightStart:
			field = utils.IfLen(ints, 1).And(terms).Then(func() error {
				return setUint64(&runestone.terms().HeightStart, ints[0])
			})
		case TagHeightEnd:
			field = utils.IfLen(ints, 1).And(terms).Then(func() error {
				return setUint64(&runestone.terms().HeightEnd, ints[0])
			})
		case TagOffsetStart:
			field = utils.IfLen(ints, 1).And(terms).Then(func() error {
				return setUint64(&runestone.terms().OffsetStart, ints[0])
			})
		case TagOffsetEnd:
			field = utils.IfLen(ints, 1).And(terms).Then(func() error {
				return setUint64(&runestone.terms().OffsetEnd, ints[0])
			})
		default:
			// unknown odd tags are ignored, even ones break the runestone.
			field = utils.If(tag%2 != 0)
		}

		if err := field.Result(ErrCenotaph); err != nil {
			return err
		}
	}

	runestone.Edicts = message.Edicts

	runestone.fillDefaultEtching()

	return nil
}

// IntoScript returns Runestone as script bytes.
func (runestone *Runestone) IntoScript() ([]byte, error) {
	payload, err := runestone.Serialize()
	if err != nil {
		return nil, err
	}

	// OP_RETURN + OP_13 + (OP_PUSH_<num> + chunk)...
	script := make([]byte, 0, len(payload)+2+3*(len(payload)/MaxPushSize+1))
	script = append(script, txscript.OP_RETURN, txscript.OP_13)
	for len(payload) > 0 {
		chunk := payload[:min(len(payload), MaxPushSize)]
		script, err = bitcoinutils.AppendPush(script, chunk)
		if err != nil {
			return nil, err
		}

		payload = payload[len(chunk):]
	}

	return script, nil
}

// Serialize returns Runestone as bytes array.
func (runestone *Runestone) Serialize() ([]byte, error) {
	message := Message{
		Edicts: runestone.Edicts,
		Fields: map[Tag][]*big.Int{},
	}
	flags := big.NewInt(0)
	if runestone.Etching != nil {
		flags = AddFlag(flags, FlagEtching)
		if runestone.Etching.Divisibility != nil {
			message.Fields[TagDivisibility] = []*big.Int{big.NewInt(int64(*runestone.Etching.Divisibility))}
		}
		if runestone.Etching.Premine != nil {
			message.Fields[TagPremine] = []*big.Int{runestone.Etching.Premine}
		}
		if runestone.Etching.Rune != nil {
			message.Fields[TagRune] = []*big.Int{runestone.Etching.Rune.Value()}
		}
		if runestone.Etching.Spacers != nil {
			message.Fields[TagSpacers] = []*big.Int{big.NewInt(int64(*runestone.Etching.Spacers))}
		}
		if runestone.Etching.Symbol != nil {
			message.Fields[TagSymbol] = []*big.Int{big.NewInt(int64(*runestone.Etching.Symbol))}
		}

		if runestone.Etching.Terms != nil {
			flags = AddFlag(flags, FlagTerms)
			if runestone.Etching.Terms.Cap != nil {
				message.Fields[TagCap] = []*big.Int{runestone.Etching.Terms.Cap}
			}
			if runestone.Etching.Terms.Amount != nil {
				message.Fields[TagAmount] = []*big.Int{runestone.Etching.Terms.Amount}
			}
			if runestone.Etching.Terms.HeightStart != nil {
				message.Fields[TagHeightStart] = []*big.Int{new(big.Int).SetUint64(*runestone.Etching.Terms.HeightStart)}
			}
			if runestone.Etching.Terms.HeightEnd != nil {
				message.Fields[TagHeightEnd] = []*big.Int{new(big.Int).SetUint64(*runestone.Etching.Terms.HeightEnd)}
			}
			if runestone.Etching.Terms.OffsetStart != nil {
				message.Fields[TagOffsetStart] = []*big.Int{new(big.Int).SetUint64(*runestone.Etching.Terms.OffsetStart)}
			}
			if runestone.Etching.Terms.OffsetEnd != nil {
				message.Fields[TagOffsetEnd] = []*big.Int{new(big.Int).SetUint64(*runestone.Etching.Terms.OffsetEnd)}
			}
		}

		if runestone.Etching.Turbo {
			flags = AddFlag(flags, FlagTurbo)
		}

		message.Fields[TagFlags] = []*big.Int{flags}
	}

	if runestone.Mint != nil {
		message.Fields[TagMint] = runestone.Mint.ToIntSeq()
	}

	if runestone.Pointer != nil {
		message.Fields[TagPointer] = []*big.Int{big.NewInt(int64(*runestone.Pointer))}
	}

	for tag, ints := range message.Fields {
		for _, value := range ints {
			if !numbers.IsUint128(value) {
				return nil, fmt.Errorf("%w: tag %d value %s", ErrOverflow, tag, value)
			}
		}
	}

	for _, edict := range runestone.Edicts {
		if edict.Amount == nil || !numbers.IsUint128(edict.Amount) {
			return nil, fmt.Errorf("%w: edict amount %v", ErrOverflow, edict.Amount)
		}
	}

	return IntSequenceIntoPayload(message.ToIntSeq())
}

// etching return Etching fieldType and initialize it if needed.
func (runestone *Runestone) etching() *Etching {
	if runestone.Etching == nil {
		runestone.Etching = new(Etching)
	}

	return runestone.Etching
}

// mint return Mint fieldType and initialize it if needed.
func (runestone *Runestone) mint() *RuneID {
	if runestone.Mint == nil {
		runestone.Mint = new(RuneID)
	}

	return runestone.Mint
}

// pointer return Pointer fieldType and initialize it if needed.
func (runestone *Runestone) pointer() *uint32 {
	if runestone.Pointer == nil {
		runestone.Pointer = new(uint32)
	}

	return runestone.Pointer
}

// terms return Etching.Terms fieldType and initialize it if needed.
func (runestone *Runestone) terms() *Terms {
	if runestone.etching().Terms == nil {
		runestone.etching().Terms = new(Terms)
	}

	return runestone.Etching.Terms
}

// fillDefaultEtching fills runestone etching fields to be valid for further processing.
func (runestone *Runestone) fillDefaultEtching() {
	if runestone.Etching != nil {
		if runestone.Etching.Premine == nil {
			runestone.Etching.Premine = big.NewInt(0)
		}
		if runestone.Etching.Divisibility == nil {
			runestone.Etching.Divisibility = new(byte)
		}
		if runestone.Etching.Spacers == nil {
			runestone.Etching.Spacers = new(uint32)
		}
		if runestone.Etching.Symbol == nil {
			runestone.Etching.Symbol = new(rune)
		}
	}
}

// Verify checks Runestone placed into transaction with outputsNumber outputs
// against the rules indexers apply, returns CenotaphError on violation.
func (runestone *Runestone) Verify(outputsNumber int) error {
	cenotaph := func(kind CenotaphKind, format string, args ...any) error {
		return &CenotaphError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	}

	switch etching := runestone.Etching; {
	case runestone.Pointer != nil && int(*runestone.Pointer) >= outputsNumber:
		return cenotaph(CenotaphPointer, "pointer %d is out of %d outputs", *runestone.Pointer, outputsNumber)
	case etching != nil && !etching.Complete():
		return cenotaph(CenotaphEtching, "incomplete %+v", *etching)
	case etching != nil && *etching.Divisibility > MaxDivisibility:
		return cenotaph(CenotaphEtching, "divisibility %d exceeds %d", *etching.Divisibility, MaxDivisibility)
	case runestone.Mint != nil && runestone.Mint.Block == 0 && runestone.Mint.TxID != 0:
		return cenotaph(CenotaphMint, "invalid rune id %s", runestone.Mint.String())
	}

	for idx, edict := range runestone.Edicts {
		switch {
		case edict.RuneID.Block == 0 && edict.RuneID.TxID != 0:
			return cenotaph(CenotaphEdict, "edict %d has invalid rune id %s", idx, edict.RuneID.String())
		case int(edict.Output) >= outputsNumber:
			return cenotaph(CenotaphEdict, "edict %d output %d is out of %d outputs", idx, edict.Output, outputsNumber)
		}
	}

	return nil
}

// PreparePayload validates raw script payload, removes OP_<...> bytes,
// returns collected data from data push commands.
func PreparePayload(rawPayload []byte) ([]byte, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, rawPayload)
	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_RETURN {
		return nil, errors.New("missing OP_RETURN")
	}

	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_13 {
		return nil, errors.New("missing OP_13")
	}

	payload := make([]byte, 0, len(rawPayload))
	for tokenizer.Next() {
		if tokenizer.Opcode() > txscript.OP_PUSHDATA4 {
			return nil, fmt.Errorf("%w: non-push opcode 0x%02x", ErrCenotaph, tokenizer.Opcode())
		}

		payload = append(payload, tokenizer.Data()...)
	}

	if err := tokenizer.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	return payload, nil
}

// IsPossibleRunestone returns true if the script starts with rune protocol bytes sequence.
func IsPossibleRunestone(script []byte) bool {
	switch {
	case len(script) < 4: // OP_RETURN + OP_13 + OP_PUSH_<num> + data(at least 1 byte).
		return false
	case script[0] != txscript.OP_RETURN:
		return false
	case script[1] != txscript.OP_13:
		return false
	case script[2] > txscript.OP_PUSHDATA4:
		return false
	}

	return true
}

// PayloadIntoIntSequence decodes payload in LEB128 into integer sequence.
func PayloadIntoIntSequence(payload []byte) ([]*big.Int, error) {
	sequence := make([]*big.Int, 0)
	data := bytes.NewReader(payload)
	for data.Len() > 0 {
		num, err := leb128.DecodeUnsigned(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}

		if !numbers.IsUint128(num) {
			return nil, ErrOverflow
		}

		sequence = append(sequence, new(big.Int).Set(num))
	}

	return sequence, nil
}

// IntSequenceIntoPayload encodes integer sequence into payload in LEB128.
func IntSequenceIntoPayload(sequence []*big.Int) ([]byte, error) {
	payload := make([]byte, 0)
	for _, num := range sequence {
		bytes, err := leb128.EncodeUnsigned(num)
		if err != nil {
			return nil, err
		}

		payload = append(payload, bytes...)
	}

	return payload, nil
}

// setUint64 stores value into the field if it fits into uint64.
func setUint64(field **uint64, value *big.Int) error {
	if !value.IsUint64() {
		return ErrOverflow
	}

	v := value.Uint64()
	*field = &v

	return nil
}
