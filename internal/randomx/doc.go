// Package randomx implements hashengine.Engine against the upstream
// RandomX C library (https://github.com/tevador/RandomX) via cgo. It is
// the production hash capability; internal/workerpool only ever sees it
// through the hashengine interfaces, so tests substitute a fake engine
// instead of linking libRandomX.
package randomx
