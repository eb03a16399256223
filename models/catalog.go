package models

import "gorm.io/gorm"

// CatalogMessage is one step of a canned campaign template.
type CatalogMessage struct {
	Day     int    `json:"day"`
	Content string `json:"content"`
}

// CatalogTemplate is a named, versioned message sequence keyed by the tag
// that triggers it. The catalog ships with the build; admins can edit the
// seeded campaigns afterwards without touching the catalog itself.
type CatalogTemplate struct {
	Name       string           `json:"name"`
	Identifier string           `json:"identifier"`
	Messages   []CatalogMessage `json:"messages"`
}

// CampaignCatalog is the static template set for automotive re-engagement:
// fourteen drip sequences plus six single-message pivot scripts.
var CampaignCatalog = []CatalogTemplate{
	{
		Name:       "Ghosted / No Response",
		Identifier: "Ghosted",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Hey, just checking in. Are you still exploring vehicle options or did plans change?"},
			{Day: 2, Content: "I’ve got a couple options that fit what you were originally looking for. Want me to send them over?"},
			{Day: 4, Content: "If the right payment and the right vehicle came up, would you be open to taking another look?"},
			{Day: 6, Content: "Before I close out your file, want me to keep sending options or pause it for now?"},
		},
	},
	{
		Name:       "Payment Too High",
		Identifier: "Payment_Issue",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Good timing. Some payments on the vehicles you liked have come down. Want updated numbers?"},
			{Day: 2, Content: "I can structure things differently now. Sometimes a small adjustment solves the payment issue. Want me to show you?"},
			{Day: 4, Content: "If I could get you closer to your ideal monthly payment, would you want to reopen the conversation?"},
			{Day: 6, Content: "I don’t want you to miss a lower payment if it’s available. Should I run a new quote for you?"},
		},
	},
	{
		Name:       "Credit Declined Previously",
		Identifier: "Credit_Declined",
		Messages: []CatalogMessage{
			{Day: 1, Content: "We have updated lenders for challenged credit. Want me to take another shot at approvals?"},
			{Day: 2, Content: "Some lenders are approving situations similar to yours from the last couple of weeks. Want me to check again?"},
			{Day: 4, Content: "I can try to get you approved without increasing your payment. Should I recheck it?"},
			{Day: 6, Content: "This is the best window we’ve had lately for approvals. Want me to run a fresh one before I close the file?"},
		},
	},
	{
		Name:       "Waiting / Timing Not Right",
		Identifier: "Timing_Issue",
		Messages: []CatalogMessage{
			{Day: 1, Content: "You mentioned timing wasn’t right earlier. Just checking in to see if things have changed."},
			{Day: 3, Content: "Inventory and rates shifted a bit, which sometimes makes the timing better. Want to see what’s available now?"},
			{Day: 5, Content: "If the right deal came up earlier than expected, would you want me to send it to you?"},
			{Day: 7, Content: "I can keep you updated only when something perfect shows up. Want me to set that up?"},
		},
	},
	{
		Name:       "Couldn’t Find the Right Vehicle",
		Identifier: "Inventory_Issue",
		Messages: []CatalogMessage{
			{Day: 1, Content: "New inventory just arrived that fits what you originally wanted. Want me to send options?"},
			{Day: 2, Content: "I think I found a couple vehicles that match your wishlist more closely. Want to see them?"},
			{Day: 4, Content: "I can search manually for you every morning if you want. What’s the one non-negotiable feature?"},
			{Day: 6, Content: "Before I close your file, want me to send the newest arrivals that might be a fit?"},
		},
	},
	{
		Name:       "Needed More Info / Confusion",
		Identifier: "More_Info",
		Messages: []CatalogMessage{
			{Day: 1, Content: "I can break everything down simply. Which part do you want clarity on first?"},
			{Day: 2, Content: "I can send you a clean breakdown of payment, rate, warranty and all costs if you’d like."},
			{Day: 4, Content: "Most people are surprised how simple the numbers look once I outline everything. Want me to send the summary?"},
			{Day: 6, Content: "Just checking in. Want a clear all-in breakdown before I close this file?"},
		},
	},
	{
		Name:       "Process Took Too Long",
		Identifier: "Process_Delay",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Good news. The approval process is much faster now. Want me to reopen your file?"},
			{Day: 3, Content: "We fixed the delays from last time. I can get you results way quicker now."},
			{Day: 5, Content: "I can fast-track your file personally if timing was the issue. Want to restart?"},
			{Day: 7, Content: "I can submit your file immediately if you’re ready. Want me to go ahead?"},
		},
	},
	{
		Name:       "Bought Elsewhere",
		Identifier: "Lost_Sale",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Congrats on the purchase! Anything I could improve for next time?"},
			{Day: 3, Content: "If the rate was higher than you wanted, I can check refinancing options anytime."},
			{Day: 10, Content: "Whenever you’re thinking upgrade or second vehicle, I’m always here to help."},
			{Day: 30, Content: "Hope the vehicle is treating you well. If anything changes, just message me anytime."},
		},
	},
	{
		Name:       "Wanted to Improve Credit First",
		Identifier: "Credit_Improvement",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Some lenders approve earlier in the rebuilding process. Want me to recheck your options?"},
			{Day: 3, Content: "I can look at credit-friendly programs for you. Chances are better right now."},
			{Day: 5, Content: "If I can get you approved without hurting your credit score, should I try again?"},
			{Day: 7, Content: "I can rerun your file anytime with no pressure. Want me to try once more?"},
		},
	},
	{
		Name:       "Negative Equity / Trade-In Issue",
		Identifier: "Negative_Equity",
		Messages: []CatalogMessage{
			{Day: 1, Content: "We have stronger programs for negative equity now. Want me to rework your trade numbers?"},
			{Day: 2, Content: "I might be able to reduce the amount rolling into the new loan. Want me to check?"},
			{Day: 4, Content: "I found a couple ways to soften the trade hit. Want to see what’s available?"},
			{Day: 6, Content: "Last call before I close your file. Want me to see if your trade position improved?"},
		},
	},
	{
		Name:       "Needed a Cosigner",
		Identifier: "Cosigner_Needed",
		Messages: []CatalogMessage{
			{Day: 1, Content: "If you’re still considering a cosigner, I can re-run the joint approval."},
			{Day: 3, Content: "Lenders are being more flexible on cosigned apps right now. Want me to try again?"},
			{Day: 5, Content: "I can try to get you approved with or without a cosigner. Want me to look at both options?"},
			{Day: 7, Content: "Before I close your file, should I try one last approval with the updated programs?"},
		},
	},
	{
		Name:       "Didn’t Like the Approved Vehicle",
		Identifier: "Vehicle_Dislike",
		Messages: []CatalogMessage{
			{Day: 1, Content: "New options came in that might fit your style better. Want to see them?"},
			{Day: 3, Content: "If I can find something closer to what you expected, should I send choices?"},
			{Day: 5, Content: "We now have more vehicles approved for similar credit profiles. Want me to check?"},
			{Day: 7, Content: "Want me to keep you updated only when better matches come in?"},
		},
	},
	{
		Name:       "Rate Too High",
		Identifier: "Rate_Issue",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Rates dropped with a few lenders. Want me to recheck yours?"},
			{Day: 2, Content: "I might be able to get you a better rate now. Want me to run the new numbers?"},
			{Day: 4, Content: "If rate was the only concern, I can try to bring it down. Should I take a look?"},
			{Day: 6, Content: "Want me to run one last check on the updated rates before I close this file?"},
		},
	},
	{
		Name:       "Missing Documents",
		Identifier: "Missing_Docs",
		Messages: []CatalogMessage{
			{Day: 1, Content: "If you have the documents now, I can reopen your approval. Want to try again?"},
			{Day: 2, Content: "I can walk you through the document list step by step so it’s easy."},
			{Day: 4, Content: "If documents were the issue, I can simplify the process. Want me to send the list again?"},
			{Day: 6, Content: "Just checking in. Do you want help gathering the documents so we can continue?"},
		},
	},
	{
		Name:       "Personal Loan -> Auto Loan Pivot",
		Identifier: "Pivot_Personal",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Many clients who were looking at personal loans ended up qualifying easier for an auto loan, often with better monthly payment options. We work with lenders who approve a wide range of credit situations. Want me to check what you qualify for?"},
		},
	},
	{
		Name:       "Mortgage -> Auto Loan Pivot",
		Identifier: "Pivot_Mortgage",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Some clients waiting on mortgage decisions found that an auto loan was simpler to approve and helped stabilize their monthly budget. Our lenders often approve quicker with lower entry requirements. Want me to show you your auto loan options?"},
		},
	},
	{
		Name:       "Debt Collection -> Auto Loan Pivot",
		Identifier: "Pivot_Collection",
		Messages: []CatalogMessage{
			{Day: 1, Content: "We work with lenders who offer auto loans even for clients managing past-due accounts, and many find the payments surprisingly manageable. If transportation is something you’re organizing, I can show flexible approval options that fit your situation."},
		},
	},
	{
		Name:       "Debt Consolidation -> Auto Loan Pivot",
		Identifier: "Pivot_Consolidation",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Many clients exploring consolidation discovered that an auto loan gave them a lower, more predictable monthly payment. Our programs include flexible approvals with competitive terms. Want me to check what you’d qualify for?"},
		},
	},
	{
		Name:       "Credit Repair -> Auto Loan Pivot",
		Identifier: "Pivot_CreditRepair",
		Messages: []CatalogMessage{
			{Day: 1, Content: "We help many people in the middle of rebuilding their credit get approved for auto loans sooner than expected. It can even help strengthen your profile long term. Want me to check your updated approval options?"},
		},
	},
	{
		Name:       "Auto Refinance -> New Auto Loan Pivot",
		Identifier: "Pivot_Refinance",
		Messages: []CatalogMessage{
			{Day: 1, Content: "Some clients looking to refinance found that upgrading into a newer vehicle actually gave them better terms and a more comfortable payment. Our lenders have strong programs for trades and transitions. Want me to show you what’s available?"},
		},
	},
}

// SeedCampaignCatalog creates one active campaign per catalog template that
// does not already exist. Existing campaigns are left untouched so admin
// edits survive restarts.
func SeedCampaignCatalog(db *gorm.DB) error {
	for _, tmpl := range CampaignCatalog {
		var existing TagCampaign
		err := db.Where("tag = ?", tmpl.Identifier).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		campaign := TagCampaign{
			Tag:      tmpl.Identifier,
			Name:     tmpl.Name,
			IsActive: true,
		}
		if err := db.Create(&campaign).Error; err != nil {
			return err
		}
		for i, msg := range tmpl.Messages {
			step := TagCampaignMessage{
				CampaignID:      campaign.ID,
				DayNumber:       msg.Day,
				SequenceOrder:   i + 1,
				MessageTemplate: msg.Content,
			}
			if err := db.Create(&step).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
