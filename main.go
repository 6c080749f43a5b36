package main

import (
	"context"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	fsdraft "github.com/nvbf/draft-sync/repos/fsdraft"
	gamerecords "github.com/nvbf/draft-sync/repos/gamerecords"
	resend "github.com/nvbf/draft-sync/repos/resend"
	wallet "github.com/nvbf/draft-sync/repos/wallet"

	auth "github.com/nvbf/draft-sync/pkg/auth"

	admin "github.com/nvbf/draft-sync/services/admin"
	coinflip "github.com/nvbf/draft-sync/services/coinflip"
	drafts "github.com/nvbf/draft-sync/services/drafts"
	lobby "github.com/nvbf/draft-sync/services/lobby"
	supervisor "github.com/nvbf/draft-sync/services/supervisor"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v\n", err)
	}

	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
	port := os.Getenv("PORT")
	allowOrigins := os.Getenv("CORS_HOSTS")
	hostURL := os.Getenv("HOST_URL")

	credentialsOption := option.WithCredentialsJSON([]byte(credentialsJSON))

	firestoreClient, err := firestore.NewClient(ctx, projectID, credentialsOption)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	firebaseApp, err := firebase.NewApp(ctx, nil, credentialsOption)
	if err != nil {
		log.Fatalf("error initializing app: %v\n", err)
	}

	store := fsdraft.NewStore(firestoreClient)
	walletService := wallet.NewService(firestoreClient)
	resendService := resend.NewService(firestoreClient, hostURL)
	recordsService := gamerecords.NewService()

	draftsService := drafts.NewDraftsService(store, resendService)
	lobbyService := lobby.NewLobbyService(store, walletService, resendService)
	coinFlipService := coinflip.NewCoinFlipService(store)
	adminService := admin.NewAdminService(store, recordsService)
	supervisorService := supervisor.NewSupervisorService(store, resendService)

	go supervisorService.Run(ctx)

	config := cors.DefaultConfig()
	config.AllowOrigins = strings.Split(allowOrigins, ",")
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Access-Control-Allow-Origin"}

	router := gin.Default()
	router.Use(cors.New(config))

	draftsRouter := router.Group("/drafts/v1")
	draftsRouter.Use(auth.AuthMiddleware(firebaseApp))

	lobbyRouter := router.Group("/lobby/v1")
	lobbyRouter.Use(auth.AuthMiddleware(firebaseApp))

	coinFlipRouter := router.Group("/coinflip/v1")
	coinFlipRouter.Use(auth.AuthMiddleware(firebaseApp))

	adminRouter := router.Group("/admin/v1")
	adminRouter.Use(auth.AuthMiddleware(firebaseApp))

	drafts.NewHTTPHandler(drafts.HTTPOptions{
		Service: draftsService,
		Router:  draftsRouter,
	})

	lobby.NewHTTPHandler(lobby.HTTPOptions{
		Service: lobbyService,
		Router:  lobbyRouter,
	})

	coinflip.NewHTTPHandler(coinflip.HTTPOptions{
		Service: coinFlipService,
		Router:  coinFlipRouter,
	})

	admin.NewHTTPHandler(admin.HTTPOptions{
		Service: adminService,
		Router:  adminRouter,
	})

	log.Fatal(router.Run(":" + port))
}
