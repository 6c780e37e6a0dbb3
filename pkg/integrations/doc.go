// Package integrations provides the HTTP clients for the services
// palpiteiro talks to.
//
// The shared [Client] handles headers, status classification and bounded
// body reads. Subpackages build on it:
//
//   - [lineupapi]: the remote lineup service that selects and prices players
//
// Asset downloads (player photos, club emblems) also go through [Client],
// one instance per download task; see package assets.
//
// [lineupapi]: github.com/palpiteiro/palpiteiro/pkg/integrations/lineupapi
package integrations
