/*
Package domain contains the core data model of the Disconnected narrative engine.

It defines the story graph (chapters, nodes, choices), the closed vocabularies of
conditions and actions that content uses to gate and mutate game progress, the
virtual filesystem served by the simulated terminal, and the records shared by
the state stores and the persistence layer. The package is kept free of I/O so
every other layer can depend on it.

# Key Entities

  - Chapter / StoryNode / StoryChoice: the static, authored narrative graph.
  - Condition: a predicate over progress (flags, clues, relationships, choices).
  - Action: a side effect requested by content, the terminal or the UI.
  - ActionDescriptor: the JSON boundary form of an Action ({type, target, value}).
  - Machine / Entry: a simulated host and its immutable directory tree.
  - CommandResult: the output of one terminal command line.
*/
package domain
