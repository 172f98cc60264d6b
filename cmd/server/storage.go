package main

import (
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/storage"
)

// InitStorage selects and returns the configured storage backend
func InitStorage(env Environment) storage.Storage {
	if env.UseSpaces {
		spacesStorage, err := storage.NewSpacesStorage(
			env.SpacesEndpoint,
			env.SpacesRegion,
			env.SpacesBucket,
			env.SpacesCDNURL,
			env.SpacesAccessKey,
			env.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces storage")
		}
		log.Info().Str("cdn", env.SpacesCDNURL).Msg("Using DigitalOcean Spaces storage")
		return spacesStorage
	}

	local := storage.NewLocalStorage(env.UploadDir, env.PublicBaseURL+"/uploads")
	log.Info().Str("dir", env.UploadDir).Msg("Using local file storage")
	return local
}
