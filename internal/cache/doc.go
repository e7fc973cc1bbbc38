// Package cache describes the on-disk package cache layout consumed by the
// cleaner: <root>/<package>/<version>/... where every version is a directory
// whose modification time decides how recent it is. The store exposes
// enumeration (packages with their versions and mod times) and recursive
// removal of a single version, keeping all path handling confined under the
// root so higher layers only deal with Locator values.
package cache
