//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("UAParserNew", js.FuncOf(newParser))
	js.Global().Set("UAParserParse", js.FuncOf(parse))
	js.Global().Set("UAParserParseBatch", js.FuncOf(parseBatch))
	js.Global().Set("UAParserDeviceType", js.FuncOf(deviceType))
	js.Global().Set("UAParserClose", js.FuncOf(closeParser))

	// Keep WASM running
	<-make(chan struct{})
}
