// Package textutil holds small text helpers shared by the emitters and the
// CLI: rounded go-pretty tables, ordinal place labels, title-cased names,
// and filesystem-safe tokens.
package textutil
