// Package telcheck crawls a website, collects the tel: links found on each
// internal page and checks them against the phone numbers the site is
// expected to advertise.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package telcheck
