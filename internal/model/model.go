// Package model holds the resource-agnostic building blocks shared by every
// endpoint: the response envelope, the pagination descriptor and the
// present/absent wrapper used by partial updates.
//
// Resource-specific types live in sub-packages (see model/user).
package model
