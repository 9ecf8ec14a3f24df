// Package schema checks and coerces submitted field values.
//
// Types are declared per field in a definition:
//
//	fields:
//	  age:   {type: int, required: true}
//	  start: {type: date, invalidRedirect: help}
//	  tags:  {type: "[string]"}
//
// Form posts deliver strings, so every type converts what it can (spf13/cast
// does the work): "42" becomes int64 42, "on" becomes true. Rules then compare
// typed values. A Schema plugs into the HTTP adapter as its validator:
//
//	s, err := schema.FromDefinition(def)
//	handler := http.NewHandler(wiz, sessions, http.WithValidator(s.Check))
package schema
