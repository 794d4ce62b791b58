// Package gitrepo implements the repository backend on top of the git
// executable.
//
// Backend probes directories with git rev-parse, lists remotes with git remote
// and fetches each remote with git fetch --verbose. The verbose reference
// lines git prints on standard error are parsed into shared.RefUpdate values
// by ParseFetchOutput.
package gitrepo
