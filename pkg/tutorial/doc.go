/*
Package tutorial loads the static tutorial definition.

The definition is read once at startup from a JSON (or YAML) file shaped as

	{ "attachments": [ { "text": ":white_large_square: ...", "color": "#f2c744" }, ... ] }

and validated so that every named step resolves to a step carrying the
pending marker. A missing or malformed file is fatal for the caller.
*/
package tutorial
