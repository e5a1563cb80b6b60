/*
Package editor contains the editing engine for mensural scores with variant
versions.

The Engine is the only thing that mutates a mensura.Piece. Edits are addressed
by (section, voice, index), where index points into the sequence the active
version reads: the default sequence with the version's readings spliced in,
variant markers included. The Engine decides where an edit lands: directly in
the default sequence, in an existing reading, or in a reading it creates for
the active version. Every edit returns a Result describing the outcome and how
indices held by the caller move.

Edits that would cut a ligature or cross a variant boundary in an
inconsistent way are refused with mensura.ErrInvalidVariantArrangement
before anything changes.

Session wraps an Engine with a clipboard and a cursor and serializes all
access through a single goroutine; other goroutines talk to it through the
Broker.
*/
package editor
