/*
Package cauce is a conversational workflow engine for WhatsApp-driven
business assistants.

It interprets flow graphs of typed nodes (collect input, respond, call an
external API, branch on conditions, transform data through an AI
completion, generate a payment link) while persisting per-conversation
state across inbound messages that may arrive days apart. A conversation
consumes no compute while it waits: between messages it exists only as a
session in the store.

# Concept

Each conversation is identified by (tenant id, counterpart address). An
inbound message either resumes the node the session suspended on, or is
matched against flow triggers when the conversation is idle. The engine
serializes all processing per identity, so racing messages can never lose
variable state.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/cauceflow/cauce"
		"github.com/cauceflow/cauce/pkg/adapters/fileflow"
		"github.com/cauceflow/cauce/pkg/domain"
	)

	func main() {
		flows, err := fileflow.New("./flows")
		if err != nil {
			log.Fatal(err)
		}

		eng, err := cauce.New(flows)
		if err != nil {
			log.Fatal(err)
		}

		id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550001"}
		reply, err := eng.HandleMessage(context.Background(), id, "turno")
		if err != nil {
			log.Fatal(err)
		}
		if reply.Handled {
			log.Println("send to counterpart:", reply.Text)
		}
	}

Sessions default to an in-memory store; production deployments inject the
Redis store and, when running several replicas, the Redis distributed
locker.
*/
package cauce
