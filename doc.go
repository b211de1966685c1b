/*
Package disconnected is the engine of a narrative hacking game.

The player works a simulated Unix terminal on the night a colleague dies,
reads files, breaks into machines, talks to contacts and pins evidence to an
investigation board. Five chapters of branching story react to all of it and
close on one of six endings.

# Concept

The story is a graph of nodes. Dialogue and choice nodes wait for the
player; terminal nodes arm the story and wait for a trigger (reading a file,
cracking a host, winning a mini-game); transition nodes advance on their own.
Every node may carry conditions (skip it when they fail) and actions (set
flags, discover clues, unlock contacts, start mini-games).

A Game wires the embedded content, the state stores, the story engine, the
terminal interpreter and the save system behind one value. Surfaces (the
interactive CLI, the HTTP API, the MCP server) drive a Game; none of them
hold game logic.

# Usage

	g, err := disconnected.New(disconnected.WithSlotStore(file.New("")))
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ctx := context.Background()
	if err := g.Start(ctx); err != nil {
		log.Fatal(err)
	}

	g.Continue(ctx)             // leave the opening cutscene
	g.Advance(ctx, "")          // step through dialogue
	res := g.Execute(ctx, "ls") // type into the terminal
	for _, l := range res.Lines {
		fmt.Println(l.Content)
	}

	if _, err := g.Save(ctx, "1", ""); err != nil {
		log.Fatal(err)
	}

Play time accrues while the game is being driven. Idle gaps longer than
MaxIdle count as MaxIdle.
*/
package disconnected
