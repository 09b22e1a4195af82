package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/zephyrtronium/picasso"
	"github.com/zephyrtronium/picasso/internal/cache"
	"github.com/zephyrtronium/picasso/internal/gallery"
)

var (
	addr    = flag.String("addr", "localhost:8080", "TCP address to listen to")
	dbName  = flag.String("db", "picasso.db", "gallery database file")
	images  = flag.String("images", "", "directory of images that expressions may sample")
	ttl     = flag.Duration("ttl", 10*time.Minute, "how long an unused render stays cached")
	maxSize = flag.Int("max-size", 1024, "largest allowed image width or height")
	entries = flag.Int("cache", 256, "maximum number of cached renders")
)

func main() {
	flag.Parse()
	store, err := gallery.Open(*dbName)
	if err != nil {
		log.Fatalf("opening gallery: %v", err)
	}
	s := &server{
		gallery: store,
		cache:   cache.New(*ttl, *entries),
		maxSize: *maxSize,
	}
	if *images != "" {
		s.images = picasso.FileImages(*images)
		store.Images = s.images
	}
	if *ttl > 0 {
		if err := s.cache.Start(max(*ttl/4, time.Second)); err != nil {
			log.Fatalf("starting cache sweeper: %v", err)
		}
	}

	srv := &fasthttp.Server{
		Handler:      s.handle,
		Name:         "picasso",
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}
	go func() {
		log.Printf("Starting HTTP server on %q", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("error in ListenAndServe: %v", err)
		}
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt)
	<-sigch

	log.Println("Interrupted. Exiting.")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(ctx); err != nil {
		log.Println(err)
	}
	if err := s.cache.Stop(); err != nil {
		log.Println(err)
	}
	if err := store.Close(); err != nil {
		log.Println(err)
	}
}
