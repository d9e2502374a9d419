// Package language normalizes language codes and detects the language of
// captured text.
//
// Detection uses whatlanggo's trigram model; target tags such as "EN-GB" are
// reduced to their base language with golang.org/x/text/language so that a
// detected "en" matches a DeepL target of "EN-GB" or "EN-US".
package language
