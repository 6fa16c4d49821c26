// Package iam provides identity and account management for the skillshare API.
//
// It covers:
//
//   - Identity resolution for the authentication filter (one lookup, no cache)
//   - Registration, password login and token issuance
//   - Password reset via single-use hashed tokens
//   - Profiles and the follow graph
//   - Account administration (disable, enable, role changes)
//
// Request Flow:
//
//	Request → authn middleware → TokenCodec.Validate → Service.ResolveIdentity
//	       ↓
//	   Handler → service call with the principal on ctx → auth.Policy checks
//
// Identity is resolved on every request so that a disabled account or changed
// role takes effect immediately.
package iam
