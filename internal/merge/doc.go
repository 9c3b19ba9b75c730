// Package merge implements the synchronized multi-file merge behind
// "col concat".
//
// Each input file is read as a LineSequence. The merger steps all sequences
// in lock-step, one line from each per step, and emits one record per step:
//
//	<timestamp> <data_1> <data_2> ... <data_N>
//
// The timestamp is the first whitespace-delimited token of every line and is
// treated as an opaque key: the merge fails unless it is byte-equal across
// all inputs at every step, and unless every input ends at the same step.
//
// The merge is single-threaded and synchronous. Failures are terminal and
// reported as *Error values carrying an ErrorCode; output already written for
// earlier steps is not rolled back.
package merge
