package main

import (
	"log"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"majordomo-backend/models"
	"majordomo-backend/utils"
)

const demoHomeName = "The Martinez Family"

// seedDemoData creates the demo household used for local development. Safe to
// run repeatedly: it skips when the home already exists and never drops data.
func seedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Home{}).Where("name = ?", demoHomeName).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo home already exists, skipping seed")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		inviteCode, err := utils.GenerateInviteCode()
		if err != nil {
			return err
		}

		home := models.Home{
			Name:       demoHomeName,
			Slug:       slug.Make(demoHomeName),
			InviteCode: inviteCode,
		}
		if err := tx.Create(&home).Error; err != nil {
			return err
		}

		// Passwords are <username>123, dev only.
		var alice models.User
		for i, username := range []string{"alice", "bob", "charlie"} {
			hash, err := utils.HashPassword(username + "123")
			if err != nil {
				return err
			}
			user := models.User{
				HomeID:       home.ID,
				Username:     username,
				PasswordHash: hash,
				Level:        1,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if i == 0 {
				alice = user
			}
		}

		templates := []models.QuestTemplate{
			{Title: "Clean Kitchen", DisplayName: "Slay the Grease Dragon", Description: "Wash dishes and wipe counters", XPReward: 25, GoldReward: 15},
			{Title: "Do Laundry", DisplayName: "Conquer the Textile Mountains", Description: "Wash, dry, and fold clothes", XPReward: 30, GoldReward: 20},
			{Title: "Vacuum Living Room", DisplayName: "Purify the Dust Realm", Description: "Deep clean the living room", XPReward: 20, GoldReward: 10},
			{Title: "Walk the Dog", DisplayName: "Quest with the Noble Beast", Description: "Take Rex for a 30 minute walk", XPReward: 15, GoldReward: 5},
			{Title: "Mow Lawn", DisplayName: "Tame the Grass Kingdom", Description: "Cut the grass and edge the driveway", XPReward: 50, GoldReward: 30},
			{Title: "Take out Trash", DisplayName: "Vanquish the Trash Goblins", Description: "Bins to curb, bring them back", XPReward: 5, GoldReward: 2},
		}
		for i := range templates {
			templates[i].HomeID = home.ID
			templates[i].CreatedBy = &alice.ID
			templates[i].Recurrence = models.RecurrenceOneOff
			if err := tx.Create(&templates[i]).Error; err != nil {
				return err
			}
		}

		rewards := []models.Reward{
			{Name: "1 Hour Gaming", Description: "Guilt-free gaming for 60 minutes", Cost: 50},
			{Name: "Movie Night", Description: "Pick any movie to watch", Cost: 75},
			{Name: "$10 Store Credit", Description: "Spend on whatever you want", Cost: 100},
			{Name: "Skip a Chore", Description: "Get out of one chore of choice", Cost: 150},
			{Name: "Pizza Night", Description: "We order your favorite pizza", Cost: 200},
			{Name: "Sleepover Permission", Description: "Sleep over at a friend's house", Cost: 250},
			{Name: "Heroic Elixir", Description: "Double XP for your next 3 completed quests", Cost: 150, Effect: models.RewardEffectXPBoost},
			{Name: "Purification Shield", Description: "Protect household from corruption debuff for 24h", Cost: 200, Effect: models.RewardEffectShield},
		}
		for i := range rewards {
			rewards[i].HomeID = home.ID
			if err := tx.Create(&rewards[i]).Error; err != nil {
				return err
			}
		}

		log.Printf("✅ Seeded %s: 3 users, %d templates, %d rewards (invite code %s)",
			home.Name, len(templates), len(rewards), home.InviteCode)
		log.Println("   Dev passwords are <username>123")
		return nil
	})
}
