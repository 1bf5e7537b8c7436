package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/DaihanaA/avanzatech-blog/gin"
	"github.com/DaihanaA/avanzatech-blog/jwt"
)

var (
	addr = ":8081"
	key  = "dev-only-signing-key"
)

func main() {
	flag.StringVar(&addr, "addr", addr, "address to listen on")
	flag.StringVar(&key, "key", key, "token signing key")
	flag.Parse()

	store := gin.NewStore()
	seed(store)

	handler := gin.New(store, jwt.NewEncodeDecoder([]byte(key)))

	log.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalln(err)
	}
}

// seed fills the store with a couple of accounts so the CLI can be tried
// without registering first.
func seed(store *gin.Store) {
	accounts := []struct {
		username, password, email, team string
	}{
		{"alice", "password", "alice@example.com", "green"},
		{"bob", "password", "bob@example.com", "green"},
		{"carol", "password", "carol@example.com", "blue"},
	}

	for _, acc := range accounts {
		if err := store.Register(acc.username, acc.password, acc.email, acc.team); err != nil {
			log.Fatalln("error seeding store:", err)
		}
	}
}
