package services_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/Deivitto/MetalFun/internal/services"
)

type TokenMetadataServiceTestSuite struct {
	suite.Suite
	db      services.DBService
	service services.TokenMetadataService
}

func (suite *TokenMetadataServiceTestSuite) SetupSuite() {
	db, err := services.NewSqliteDBService(":memory:")
	suite.Require().NoError(err)
	suite.db = db

	suite.service = services.NewTokenMetadataService(db.GetDB())
}

func (suite *TokenMetadataServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *TokenMetadataServiceTestSuite) SetupTest() {
	suite.db.GetDB().Where("1 = 1").Delete(&models.TokenMetadata{})
}

func (suite *TokenMetadataServiceTestSuite) TestCreateAndGet() {
	description := "token page copy"
	created, err := suite.service.CreateTokenMetadata(&models.TokenMetadata{
		TokenID:     "0xT1",
		Description: &description,
		Tags:        []string{"metal", "featured"},
		AdditionalData: models.JSON{
			"theme": "dark",
		},
	})
	suite.NoError(err)
	suite.Greater(created.ID, uint(0))

	found, err := suite.service.GetTokenMetadata("0xT1")
	suite.NoError(err)
	suite.Require().NotNil(found.Description)
	suite.Equal("token page copy", *found.Description)
	suite.Equal([]string{"metal", "featured"}, found.Tags)
	suite.Equal("dark", found.AdditionalData["theme"])

	_, err = suite.service.GetTokenMetadata("0xMISSING")
	suite.Error(err)
}

func (suite *TokenMetadataServiceTestSuite) TestUpdate() {
	_, err := suite.service.CreateTokenMetadata(&models.TokenMetadata{TokenID: "0xT2"})
	suite.Require().NoError(err)

	image := "https://example.com/logo.png"
	updated, err := suite.service.UpdateTokenMetadata("0xT2", services.TokenMetadataUpdate{
		Image: &image,
		Tags:  []string{"metal"},
	})
	suite.NoError(err)
	suite.Require().NotNil(updated.Image)
	suite.Equal(image, *updated.Image)
	suite.Equal([]string{"metal"}, updated.Tags)

	suite.Run("Unset fields survive a later update", func() {
		merchant := "0xmerchant"
		updated, err := suite.service.UpdateTokenMetadata("0xT2", services.TokenMetadataUpdate{
			MerchantAddress: &merchant,
		})
		suite.NoError(err)
		suite.Require().NotNil(updated.Image)
		suite.Equal(image, *updated.Image)
		suite.Equal("0xmerchant", *updated.MerchantAddress)
	})

	suite.Run("Missing token id fails", func() {
		_, err := suite.service.UpdateTokenMetadata("0xNOPE", services.TokenMetadataUpdate{})
		suite.Error(err)
	})
}

func TestTokenMetadataServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenMetadataServiceTestSuite))
}
