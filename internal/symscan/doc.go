// Package symscan extracts punctuator entries from a C++ symbol table header.
//
// The header holds arrays of the form
//
//	static const chunk_tag_t symbols2[] =
//	{
//	   { "!=",      CT_COMPARE },
//	   { R"(\\)",   CT_BACKSLASH },
//	};
//
// Each entry becomes a punct.Entry whose symbol is "<array>[<index>]", the
// reference the generated table stores. The scanner is a two-state machine:
// awaiting an array header, or inside an array. Problems are reported through
// a diag.Reporter with the span of the offending line.
package symscan
