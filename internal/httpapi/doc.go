// Package httpapi exposes games, module moves and the participant roster
// over HTTP.
//
// Routes:
//
//	POST   /games                     create a game
//	GET    /games                     list game ids
//	GET    /games/{id}                game state
//	DELETE /games/{id}                drop a game
//	POST   /games/{id}/move           {x, y}: a human move
//	POST   /games/{id}/algo-move      {participant, time_limit}: one module move
//	POST   /games/{id}/auto-step      {player1, player2, time_limit}: one self-play step
//	GET    /participants              list participants
//	POST   /participants              {name, path}: register or update
//	GET    /participants/{id}         one participant
//	PATCH  /participants/{id}         {name?, path?}
//	DELETE /participants/{id}         remove
//
// The participant routes exist only when a roster is configured. Every
// handler that touches a game does so through registry.Registry.With, so
// moves on one game are serialised.
//
// Errors are JSON objects of the form {"error": "..."}.
package httpapi
