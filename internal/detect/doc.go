// Package detect supplies best-effort startup defaults for the
// configuration store: the product serial number of the machine nexup runs
// on, and the default download URL embedded in the updater script.
//
// Every probe is strictly best-effort. Functions return (value, ok) and a
// failed lookup is reported as ok=false, never as an error; the caller
// treats it as "no default available" and moves on.
package detect
