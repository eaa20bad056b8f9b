// Package tools holds the fixed catalog of appointment operations the
// conversational model may invoke, and the dispatcher that validates and
// executes them.
//
// The catalog is immutable and checked against the registered handlers at
// startup, so a name mismatch is a construction-time error rather than a
// runtime surprise. Dispatch itself never returns an error to the caller:
// every failure is wrapped into a Result marked failed.
package tools
