// Package token defines the lexical vocabulary of the language.
package token
