// Package gitnative implements the repository backend with go-git, without
// spawning git for repository detection or remote enumeration.
//
// Reference updates are derived by diffing remote-tracking branches and tags
// before and after each fetch. Fetches against one repository are serialized
// so that every diff belongs to a single remote.
package gitnative
