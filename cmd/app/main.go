package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mealmatch-backend/cmd/config"
	"mealmatch-backend/internal/utils"
	"mealmatch-backend/pkg/firebase"
)

func main() {
	utils.LoadConfig()

	ctx := context.Background()
	firebaseApp, err := firebase.NewApp(ctx)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}

	authClient, err := firebase.NewAuthClient(ctx, firebaseApp)
	if err != nil {
		log.Fatalf("firebase auth init failed: %v", err)
	}

	firestoreClient, err := firebase.NewFirestoreClient(ctx, firebaseApp)
	if err != nil {
		log.Fatalf("firestore init failed: %v", err)
	}
	defer firestoreClient.Close()

	app, sweeper, err := config.NewApp(firestoreClient, authClient)
	if err != nil {
		log.Fatalf("app setup failed: %v", err)
	}

	if sweeper != nil {
		sweeper.Start()
		defer sweeper.Stop()
	}

	port := utils.GetConfig("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
