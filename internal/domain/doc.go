// Package domain defines the shared types and collaborator contracts.
//
// Posts and quotes come in through PostSource and PriceSource; summaries and
// reports go out to the transport layer. No implementation code lives here.
package domain
