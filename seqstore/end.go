package seqstore

// EndID names one strand-oriented end of a sequence.  It replaces the
// sign/parity arithmetic some assemblers use to encode strand in the
// sequence id itself.
type EndID struct {
	Seq     ID
	Reverse bool
}

// End builds the EndID for the given sequence and strand.
func End(id ID, reverse bool) EndID {
	return EndID{Seq: id, Reverse: reverse}
}

// SeqID strips the orientation.
func (e EndID) SeqID() ID { return e.Seq }

// Flip returns the opposite strand of the same sequence.
func (e EndID) Flip() EndID { return EndID{Seq: e.Seq, Reverse: !e.Reverse} }

// Less orders EndIDs for deterministic iteration: by sequence id, forward
// strand first.
func (e EndID) Less(o EndID) bool {
	if e.Seq != o.Seq {
		return e.Seq < o.Seq
	}
	return !e.Reverse && o.Reverse
}

// Area addresses a subrange [Start, End) of a sequence.  For reverse areas
// the coordinates are on the reverse-complemented sequence.
type Area struct {
	Seq     ID
	Start   int
	End     int
	Reverse bool
}
