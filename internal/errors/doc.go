// Package errors provides structured, coded errors for cubic.
//
// Every failure that crosses a package boundary carries a registered code:
//   - discovery: the sites tree could not be read (E100)
//   - prefetch: route resolution, hook failures and timeouts (E110-E119)
//   - config: cubic.json loading and validation (E120-E129)
//   - manifest: explicit endpoint manifests (E130-E139)
//
// Errors wrap their cause, so errors.Is and errors.As keep working against
// the underlying I/O or hook error.
//
// # Usage
//
//	err := errors.New("E100").
//	    WithDetail("reading src/sites/blog").
//	    Wrap(ioErr)
//
//	if errors.HasCode(err, "E111") {
//	    // render a not-found page
//	}
//
//	fmt.Print(err.Format())
//	// ERROR E100: Route discovery failed
//	//
//	//   reading src/sites/blog
//	//
//	//   Hint: Check that the sites directory exists and is readable
package errors
