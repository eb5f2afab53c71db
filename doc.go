// Package di is a name-keyed dependency-injection library for Go.
//
// An Injector maps normalized names to registered values or lazily-computed
// factories. Functions are invoked by resolving each of their declared
// dependency names against the injector and any imported injectors, so
// components state what they need by name rather than wiring it by hand.
//
// Injectors compose: an injector can import other injectors, gaining
// read-only access to the entries they mark public, and NewChild builds an
// injector that inherits its parent's registry that way. Names are
// case-insensitive and every entry is also reachable under the owning
// injector's name as a prefix ("appvalue" for entry "value" of injector
// "app"), which disambiguates lookups across import chains.
//
// The primary usage of this library is via New, Register and Invoke. See
// Injector and Func for more documentation.
package di
