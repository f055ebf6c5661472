// Package storetest contains conformance tests shared by implementations of
// storedefs.Store.
package storetest
