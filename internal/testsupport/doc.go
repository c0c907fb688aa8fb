// Package testsupport builds configs, archives and file trees for tests.
//
// Test convention: the storage, transport and CLI layers (cmd/geopipe,
// config, fileutil, history, logging, preflight, services, stage) assert
// with the standard testing package. The data-path packages (archive,
// dataset, projection, sectioned, stageexec, table, workflow) use testify
// require/assert. New tests follow the style of their package.
package testsupport
