// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

// Condition accumulates checks of the message field and invokes
// the field setter only if every check holds.
type Condition struct {
	ok  bool
	err error
}

// If returns Condition of ok.
func If(ok bool) *Condition {
	return &Condition{ok: ok}
}

// IfLen returns Condition that arr has exactly length items.
func IfLen[T any](arr []T, length int) *Condition {
	return If(len(arr) == length)
}

// And narrows the Condition with ok.
func (c *Condition) And(ok bool) *Condition {
	c.ok = c.ok && ok
	return c
}

// Then invokes fn if the Condition holds and no fn failed before.
func (c *Condition) Then(fn func() error) *Condition {
	if c.ok && c.err == nil {
		c.err = fn()
	}

	return c
}

// Ok returns state of the Condition.
func (c *Condition) Ok() bool {
	return c.ok
}

// Error returns error of the invoked fn if any.
func (c *Condition) Error() error {
	return c.err
}

// Result returns error of the invoked fn, or failure if the Condition does not hold.
func (c *Condition) Result(failure error) error {
	switch {
	case c.err != nil:
		return c.err
	case !c.ok:
		return failure
	default:
		return nil
	}
}
