package main

import (
	"log"
	"os"

	"github.com/spf13/viper"
	"github.com/usab-esports/game-tracker/pkg/api"
	"github.com/usab-esports/game-tracker/pkg/clip"
	"github.com/usab-esports/game-tracker/pkg/hud"
	"github.com/usab-esports/game-tracker/pkg/ocr"
	"github.com/usab-esports/game-tracker/pkg/store"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error: Could not read config file, got '%v'", err)
	}

	//first - create project's data root dir
	if _, err := os.Stat(viper.GetString("directory.root")); err != nil {
		if os.IsNotExist(err) {
			if err := os.Mkdir(viper.GetString("directory.root"), 0766); err != nil {
				log.Printf("Error Creating '%s' directory, got '%v'", viper.GetString("directory.root"), err)
			}
		}
	}

	//create missing directories from config file
	for _, dir := range viper.GetStringMap("directory") {
		if _, err := os.Stat(dir.(string)); err != nil {
			if os.IsNotExist(err) {
				if err := os.Mkdir(dir.(string), 0766); err != nil {
					log.Printf("Error Creating '%s' directory, got '%v'", dir.(string), err)
				}
			}
		}
	}

	if viper.GetString("directory.source") == "" || viper.GetString("directory.data") == "" || viper.GetString("directory.clips") == "" {
		log.Fatalf("Error: Missing critical configurations")
	}

	regions, ok := hud.Layout(viper.GetString("hud.layout"))
	if !ok {
		log.Fatalf("Error: Unknown HUD layout '%s'", viper.GetString("hud.layout"))
	}

	if !clip.Available() {
		log.Printf("Warning: ffmpeg not found on PATH, clip extraction will fail")
	}

	//the OCR model is expensive to load - one engine for the process lifetime
	engine := ocr.NewEngine()
	defer engine.Close()

	server := &api.Server{
		OCR:     engine,
		Games:   store.NewStore(viper.GetString("directory.data")),
		Scout:   store.NewScoutStore(viper.GetString("directory.data"), viper.GetString("scout.team")),
		Regions: regions,
	}

	r := server.SetRouter()
	if err := r.Run(":" + viper.GetString("http.port")); err != nil {
		log.Fatalf("Error: Got '%v'", err)
	}
}
